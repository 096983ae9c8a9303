package testutil

import (
	"time"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/internal/service"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// Env is a storefront backed entirely by in-memory stores
type Env struct {
	Store    *MemoryStore
	Sessions *MemorySessions
	Cache    *MemoryProductCache
	Shop     *service.Storefront
}

func NewEnv() *Env {
	store := NewMemoryStore()
	sessions := NewMemorySessions()
	cache := NewMemoryProductCache()
	shop := service.NewStorefront(service.Stores{
		Products:        store,
		Orders:          store,
		Reservations:    store,
		PersistentCarts: store,
		Tx:              store,
		Sessions:        sessions,
		Cache:           cache,
	}, zap.NewNop())
	return &Env{Store: store, Sessions: sessions, Cache: cache, Shop: shop}
}

// Pet builds an available product with a fixed create date
func Pet(code, name string, petType models.PetType, price float64) models.Product {
	return models.Product{
		Code:       code,
		Name:       name,
		Type:       petType,
		Price:      price,
		Status:     models.ProductStatusAvailable,
		CreateDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Customer returns contact details that pass validation
func Customer(email string) *models.CustomerInfo {
	return &models.CustomerInfo{
		Name:    "Jamie Rivera",
		Address: "12 King St W, Kitchener ON",
		Email:   email,
		Phone:   "519-555-0142",
	}
}
