package service

import (
	"context"
	"strings"
	"time"

	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// ProductStore is the durable product catalog
type ProductStore interface {
	GetProduct(ctx context.Context, code string) (*models.Product, error)
	ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	UpsertProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, code string) error
	SetProductStatus(ctx context.Context, code, status string) error
}

type OrderStore interface {
	MaxOrderNum(ctx context.Context) (int, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrderByNum(ctx context.Context, orderNum int) (*models.Order, error)
}

type ReservationStore interface {
	NextReservationID(ctx context.Context) (int64, error)
	InsertReservation(ctx context.Context, reservation *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, status models.ReservationStatus) error
	// DeleteReservation removes the reservation only while it is still in
	// status. NotFound covers both a missing id and a changed status.
	DeleteReservation(ctx context.Context, id int64, status models.ReservationStatus) error
	ListReservations(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
	DeleteReservations(ctx context.Context, filter models.ReservationFilter) (int64, error)
	ReservationSummary(ctx context.Context) (*models.ReservationSummary, error)
}

// PersistentCartStore holds the durable copy of authenticated users' carts
type PersistentCartStore interface {
	FindPersistentCart(ctx context.Context, userID string) (*models.PersistentCart, error)
	UpsertPersistentCart(ctx context.Context, userID, cartData string) error
	DeletePersistentCart(ctx context.Context, userID string) error
	PurgePersistentCarts(ctx context.Context, before time.Time) (int64, error)
}

// Transactor runs fn so that every store call made with the ctx it receives
// commits or rolls back together
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionCartStore keeps the transient cart bound to a session id.
// LoadCart and TakeLastOrdered return a nil cart when nothing is stored.
type SessionCartStore interface {
	LoadCart(ctx context.Context, sessionID string) (*models.CartModel, error)
	SaveCart(ctx context.Context, sessionID string, cart *models.CartModel) error
	DeleteCart(ctx context.Context, sessionID string) error
	SaveLastOrdered(ctx context.Context, sessionID string, cart *models.CartModel) error
	TakeLastOrdered(ctx context.Context, sessionID string) (*models.CartModel, error)
}

type ProductCache interface {
	GetProduct(ctx context.Context, code string) (*models.Product, bool, error)
	CacheProduct(ctx context.Context, product *models.Product) error
	EvictProduct(ctx context.Context, code string) error
}

const RoleAdmin = "admin"

// Caller identifies who is acting: always a session, optionally a signed-in user
type Caller struct {
	SessionID string
	UserID    string
	Email     string
	Role      string
}

func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

func (c Caller) IsAdmin() bool {
	return c.Authenticated() && strings.EqualFold(c.Role, RoleAdmin)
}
