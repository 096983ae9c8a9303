package service

import (
	"context"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// Storefront wires the cart, order and reservation flows the HTTP layer calls
type Storefront struct {
	Catalog      *Catalog
	Carts        *CartSessionManager
	Orders       *OrderEngine
	Reservations *ReservationEngine
	logger       *zap.Logger
}

type Stores struct {
	Products        ProductStore
	Orders          OrderStore
	Reservations    ReservationStore
	PersistentCarts PersistentCartStore
	Tx              Transactor
	Sessions        SessionCartStore
	Cache           ProductCache
}

func NewStorefront(stores Stores, logger *zap.Logger) *Storefront {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := NewCatalog(stores.Products, stores.Cache, logger.Named("catalog"))
	return &Storefront{
		Catalog:      catalog,
		Carts:        NewCartSessionManager(stores.Sessions, stores.PersistentCarts, catalog, logger.Named("cart")),
		Orders:       NewOrderEngine(stores.Orders, stores.Tx, logger.Named("orders")),
		Reservations: NewReservationEngine(stores.Reservations, stores.Products, catalog, stores.Tx, logger.Named("reservations")),
		logger:       logger,
	}
}

// resolveCustomer picks submitted info over the info already on the cart.
// Submitted info is validated; attached info must already be valid.
func resolveCustomer(cart *models.CartModel, submitted *models.CustomerInfo) (*models.CustomerInfo, error) {
	if submitted != nil {
		info := *submitted
		if fields := info.Validate(); len(fields) > 0 {
			return nil, global.InvalidArgument("invalid customer information").WithFields(fields)
		}
		return &info, nil
	}
	if !cart.IsValidCustomer() {
		return nil, global.InvalidState("valid customer information is required")
	}
	info := *cart.CustomerInfo
	return &info, nil
}

// Checkout finalizes the caller's cart into an order, keeps it as the last
// ordered cart and clears the session cart
func (s *Storefront) Checkout(ctx context.Context, caller Caller, submitted *models.CustomerInfo) (*models.Order, error) {
	cart, err := s.Carts.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, global.InvalidState("cart is empty")
	}
	customer, err := resolveCustomer(cart, submitted)
	if err != nil {
		return nil, err
	}

	order, err := s.Orders.Finalize(ctx, cart, customer)
	if err != nil {
		return nil, err
	}

	if err := s.Carts.StoreLastOrdered(ctx, caller, cart); err != nil {
		s.logger.Warn("failed to keep last ordered cart", zap.String("session_id", caller.SessionID), zap.Error(err))
	}
	if err := s.Carts.Clear(ctx, caller); err != nil {
		s.logger.Warn("failed to clear cart after checkout", zap.String("session_id", caller.SessionID), zap.Error(err))
	}
	return order, nil
}

// Reserve turns the caller's cart into a PENDING reservation and clears it.
// An empty email defaults to the signed-in caller's.
func (s *Storefront) Reserve(ctx context.Context, caller Caller, submitted *models.CustomerInfo) (*models.Reservation, error) {
	if !caller.Authenticated() {
		return nil, global.Forbidden("sign in to reserve a pet")
	}
	cart, err := s.Carts.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, global.InvalidState("cart is empty")
	}

	if submitted != nil && submitted.Email == "" {
		withEmail := *submitted
		withEmail.Email = caller.Email
		submitted = &withEmail
	}
	customer, err := resolveCustomer(cart, submitted)
	if err != nil {
		return nil, err
	}

	reservation, err := s.Reservations.Create(ctx, cart, customer)
	if err != nil {
		return nil, err
	}
	if err := s.Carts.Clear(ctx, caller); err != nil {
		s.logger.Warn("failed to clear cart after reservation", zap.String("session_id", caller.SessionID), zap.Error(err))
	}
	return reservation, nil
}
