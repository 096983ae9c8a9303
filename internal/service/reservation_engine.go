package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// ReservationEngine creates adoption reservations and drives their status.
// Status changes propagate to the linked product in the same transaction.
type ReservationEngine struct {
	reservations ReservationStore
	products     ProductStore
	catalog      *Catalog
	tx           Transactor
	logger       *zap.Logger
	now          func() time.Time
}

func NewReservationEngine(reservations ReservationStore, products ProductStore, catalog *Catalog, tx Transactor, logger *zap.Logger) *ReservationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationEngine{
		reservations: reservations,
		products:     products,
		catalog:      catalog,
		tx:           tx,
		logger:       logger,
		now:          time.Now,
	}
}

// Create records a PENDING reservation for the cart's first product. All lines
// are kept in ReservedItemsDetails.
func (e *ReservationEngine) Create(ctx context.Context, cart *models.CartModel, customer *models.CustomerInfo) (*models.Reservation, error) {
	if err := checkCheckoutReady(cart, customer); err != nil {
		return nil, err
	}

	details, err := json.Marshal(cart.CartLines)
	if err != nil {
		return nil, global.Internal(err, "failed to snapshot cart lines")
	}

	id, err := e.reservations.NextReservationID(ctx)
	if err != nil {
		return nil, err
	}

	productCode := cart.CartLines[0].ProductInfo.Code
	var linked *string
	switch _, err := e.products.GetProduct(ctx, productCode); {
	case err == nil:
		linked = &productCode
	case global.IsKind(err, global.KindNotFound):
		e.logger.Warn("reserved product no longer exists, leaving reservation unlinked", zap.String("product_code", productCode))
	default:
		return nil, err
	}

	reservation := &models.Reservation{
		ID:                   id,
		CustomerName:         customer.Name,
		CustomerEmail:        customer.Email,
		CustomerPhone:        customer.Phone,
		CustomerAddress:      customer.Address,
		PreferredVisitDate:   customer.PreferredVisitDate,
		Message:              customer.Message,
		ReservationDate:      e.now().UTC(),
		Status:               models.ReservationPending,
		ProductCode:          linked,
		ReservedItemsDetails: string(details),
	}
	if err := e.reservations.InsertReservation(ctx, reservation); err != nil {
		return nil, err
	}

	e.logger.Info("reservation created",
		zap.Int64("id", reservation.ID),
		zap.String("product_code", productCode),
		zap.Bool("linked", linked != nil),
		zap.Int("lines", len(cart.CartLines)))
	return reservation, nil
}

// UpdateStatus moves a reservation to status and syncs the linked product.
// Terminal reservations only accept their current status, as a no-op.
func (e *ReservationEngine) UpdateStatus(ctx context.Context, id int64, status string) (*models.Reservation, error) {
	next, err := models.ParseReservationStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		updated *models.Reservation
		touched string
	)
	err = e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		updated, touched = nil, ""

		reservation, err := e.reservations.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if !reservation.CanTransitionTo(next) {
			return global.InvalidState("reservation %d is already %s", id, reservation.Status)
		}
		if reservation.Status == next {
			updated = reservation
			return nil
		}

		if err := e.reservations.UpdateReservationStatus(ctx, id, next); err != nil {
			return err
		}
		reservation.Status = next

		if productStatus, ok := next.ProductStatus(); ok && reservation.ProductCode != nil {
			code := *reservation.ProductCode
			err := e.products.SetProductStatus(ctx, code, productStatus)
			switch {
			case err == nil:
				touched = code
			case global.IsKind(err, global.KindNotFound):
				e.logger.Warn("reserved product no longer exists",
					zap.Int64("reservation_id", id), zap.String("product_code", code))
			default:
				return err
			}
		}

		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	if touched != "" && e.catalog != nil {
		e.catalog.Evict(ctx, touched)
	}
	e.logger.Info("reservation status updated", zap.Int64("id", id), zap.String("status", string(updated.Status)))
	return updated, nil
}

// Withdraw lets the owner cancel a reservation that is still PENDING
func (e *ReservationEngine) Withdraw(ctx context.Context, id int64, requesterEmail string) error {
	reservation, err := e.reservations.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if !reservation.IsOwnedBy(requesterEmail) {
		return global.Forbidden("reservation %d belongs to another customer", id)
	}
	if !reservation.CanBeWithdrawn() {
		return global.InvalidState("only pending reservations can be withdrawn, reservation %d is %s", id, reservation.Status)
	}
	err = e.reservations.DeleteReservation(ctx, id, models.ReservationPending)
	if !global.IsKind(err, global.KindNotFound) {
		return err
	}
	// the status changed after the read
	current, getErr := e.reservations.GetReservation(ctx, id)
	if getErr != nil {
		return getErr
	}
	return global.InvalidState("only pending reservations can be withdrawn, reservation %d is %s", id, current.Status)
}

// ClearCompleted deletes the requester's ACCEPTED and REJECTED reservations
func (e *ReservationEngine) ClearCompleted(ctx context.Context, requesterEmail string) (int64, error) {
	email, err := normalizeEmail(requesterEmail)
	if err != nil {
		return 0, err
	}
	removed, err := e.reservations.DeleteReservations(ctx, models.ReservationFilter{
		CustomerEmail: email,
		Statuses:      models.TerminalReservationStatuses,
	})
	if err != nil {
		return 0, err
	}
	e.logger.Info("cleared completed reservations", zap.String("email", email), zap.Int64("removed", removed))
	return removed, nil
}

func (e *ReservationEngine) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	return e.reservations.GetReservation(ctx, id)
}

func (e *ReservationEngine) ListAll(ctx context.Context) ([]models.Reservation, error) {
	return e.reservations.ListReservations(ctx, models.ReservationFilter{})
}

func (e *ReservationEngine) ListByEmail(ctx context.Context, email string) ([]models.Reservation, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return e.reservations.ListReservations(ctx, models.ReservationFilter{CustomerEmail: email})
}

// ListActiveByEmail returns the requester's PENDING reservations
func (e *ReservationEngine) ListActiveByEmail(ctx context.Context, email string) ([]models.Reservation, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return e.reservations.ListReservations(ctx, models.ReservationFilter{
		CustomerEmail: email,
		Statuses:      []models.ReservationStatus{models.ReservationPending},
	})
}

func (e *ReservationEngine) Summary(ctx context.Context) (*models.ReservationSummary, error) {
	return e.reservations.ReservationSummary(ctx)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", global.InvalidArgument("email is required")
	}
	return email, nil
}
