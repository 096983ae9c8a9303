package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// CartSessionManager binds one cart to each session. Signed-in callers also
// get a durable copy so the cart survives a lost session. The session copy is
// authoritative; the durable copy may lag until the next successful write.
type CartSessionManager struct {
	sessions SessionCartStore
	durable  PersistentCartStore
	catalog  *Catalog
	logger   *zap.Logger
}

func NewCartSessionManager(sessions SessionCartStore, durable PersistentCartStore, catalog *Catalog, logger *zap.Logger) *CartSessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartSessionManager{sessions: sessions, durable: durable, catalog: catalog, logger: logger}
}

func requireSession(caller Caller) error {
	if strings.TrimSpace(caller.SessionID) == "" {
		return global.InvalidArgument("session id is required")
	}
	return nil
}

// Get returns the session's cart, creating and binding one on first access
func (m *CartSessionManager) Get(ctx context.Context, caller Caller) (*models.CartModel, error) {
	if err := requireSession(caller); err != nil {
		return nil, err
	}

	cart, err := m.sessions.LoadCart(ctx, caller.SessionID)
	if err != nil {
		m.logger.Warn("session cart unreadable, starting over",
			zap.String("session_id", caller.SessionID), zap.Error(err))
		cart = nil
	}
	if cart != nil {
		return cart, nil
	}

	if caller.Authenticated() {
		cart = m.restore(ctx, caller.UserID)
	}
	if cart == nil {
		cart = models.NewCartModel()
	}

	if err := m.sessions.SaveCart(ctx, caller.SessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// restore loads the user's durable cart. Any failure yields nil.
func (m *CartSessionManager) restore(ctx context.Context, userID string) *models.CartModel {
	if m.durable == nil {
		return nil
	}
	row, err := m.durable.FindPersistentCart(ctx, userID)
	if err != nil {
		if !global.IsKind(err, global.KindNotFound) {
			m.logger.Warn("failed to load persistent cart", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}

	cart := models.NewCartModel()
	if err := json.Unmarshal([]byte(row.CartData), cart); err != nil {
		m.logger.Warn("discarding unreadable persistent cart", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	cart.Normalize()
	return cart
}

// commit writes the session copy, then checkpoints the durable copy
func (m *CartSessionManager) commit(ctx context.Context, caller Caller, cart *models.CartModel) error {
	if err := m.sessions.SaveCart(ctx, caller.SessionID, cart); err != nil {
		return err
	}
	if caller.Authenticated() {
		m.checkpoint(ctx, caller.UserID, cart)
	}
	return nil
}

func (m *CartSessionManager) checkpoint(ctx context.Context, userID string, cart *models.CartModel) {
	if m.durable == nil {
		return
	}
	data, err := json.Marshal(cart)
	if err != nil {
		m.logger.Warn("failed to serialize cart for persistence", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := m.durable.UpsertPersistentCart(ctx, userID, string(data)); err != nil {
		m.logger.Warn("failed to persist cart", zap.String("user_id", userID), zap.Error(err))
	}
}

// AddToCart adds quantity of the product to the cart. A negative quantity
// decrements the line and removes it once it reaches zero.
func (m *CartSessionManager) AddToCart(ctx context.Context, caller Caller, code string, quantity int) (*models.CartModel, error) {
	product, _, err := m.catalog.Product(ctx, code)
	if err != nil {
		return nil, err
	}
	cart, err := m.Get(ctx, caller)
	if err != nil {
		return nil, err
	}

	cart.AddProduct(product.Info(), quantity)
	if err := m.commit(ctx, caller, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets the quantity of the product's line. Zero or below
// removes the line; a product not in the cart is left alone.
func (m *CartSessionManager) UpdateQuantity(ctx context.Context, caller Caller, code string, quantity int) (*models.CartModel, error) {
	product, _, err := m.catalog.Product(ctx, code)
	if err != nil {
		return nil, err
	}
	cart, err := m.Get(ctx, caller)
	if err != nil {
		return nil, err
	}

	cart.UpdateProduct(product.Code, quantity)
	if err := m.commit(ctx, caller, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantities applies a bulk edit. Every code must name a catalog product.
func (m *CartSessionManager) UpdateQuantities(ctx context.Context, caller Caller, updates []models.QuantityUpdate) (*models.CartModel, error) {
	for i := range updates {
		product, _, err := m.catalog.Product(ctx, updates[i].Code)
		if err != nil {
			return nil, err
		}
		updates[i].Code = product.Code
	}
	cart, err := m.Get(ctx, caller)
	if err != nil {
		return nil, err
	}

	cart.UpdateQuantity(updates)
	if err := m.commit(ctx, caller, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveFromCart deletes the product's line. Unlike CartModel.RemoveProduct it
// fails when the cart is empty or holds no such line.
func (m *CartSessionManager) RemoveFromCart(ctx context.Context, caller Caller, code string) (*models.CartModel, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	cart, err := m.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, global.NotFound("cart is empty")
	}
	if !cart.RemoveProduct(code) {
		return nil, global.NotFound("product %s is not in the cart", code)
	}

	if err := m.commit(ctx, caller, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetCustomerInfo validates info and attaches it to the cart. Invalid info is
// rejected without touching the cart.
func (m *CartSessionManager) SetCustomerInfo(ctx context.Context, caller Caller, info *models.CustomerInfo) (*models.CartModel, error) {
	if info == nil {
		return nil, global.InvalidArgument("customer information is required")
	}
	if fields := info.Validate(); len(fields) > 0 {
		return nil, global.InvalidArgument("invalid customer information").WithFields(fields)
	}
	cart, err := m.Get(ctx, caller)
	if err != nil {
		return nil, err
	}

	attached := *info
	cart.CustomerInfo = &attached
	if err := m.commit(ctx, caller, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear unbinds the session's cart and drops the caller's durable copy
func (m *CartSessionManager) Clear(ctx context.Context, caller Caller) error {
	if err := requireSession(caller); err != nil {
		return err
	}
	if err := m.sessions.DeleteCart(ctx, caller.SessionID); err != nil {
		return err
	}
	if caller.Authenticated() && m.durable != nil {
		if err := m.durable.DeletePersistentCart(ctx, caller.UserID); err != nil {
			m.logger.Warn("failed to delete persistent cart", zap.String("user_id", caller.UserID), zap.Error(err))
		}
	}
	return nil
}

// StoreLastOrdered keeps a finalized cart for one confirmation read
func (m *CartSessionManager) StoreLastOrdered(ctx context.Context, caller Caller, cart *models.CartModel) error {
	if err := requireSession(caller); err != nil {
		return err
	}
	return m.sessions.SaveLastOrdered(ctx, caller.SessionID, cart.Clone())
}

// LastOrdered returns the last finalized cart and forgets it
func (m *CartSessionManager) LastOrdered(ctx context.Context, caller Caller) (*models.CartModel, error) {
	if err := requireSession(caller); err != nil {
		return nil, err
	}
	cart, err := m.sessions.TakeLastOrdered(ctx, caller.SessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, global.NotFound("no recent order for this session")
	}
	return cart, nil
}
