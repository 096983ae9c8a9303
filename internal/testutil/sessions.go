package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// MemorySessions stores session carts as JSON, so callers never share a
// pointer with the stored copy
type MemorySessions struct {
	mu    sync.Mutex
	carts map[string][]byte
	last  map[string][]byte

	FailLoad error
	FailSave error
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{carts: map[string][]byte{}, last: map[string][]byte{}}
}

func decode(data []byte) (*models.CartModel, error) {
	cart := models.NewCartModel()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, err
	}
	cart.Normalize()
	return cart, nil
}

func (m *MemorySessions) LoadCart(_ context.Context, sessionID string) (*models.CartModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLoad != nil {
		return nil, m.FailLoad
	}
	data, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return decode(data)
}

func (m *MemorySessions) SaveCart(_ context.Context, sessionID string, cart *models.CartModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.carts[sessionID] = data
	return nil
}

func (m *MemorySessions) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *MemorySessions) SaveLastOrdered(_ context.Context, sessionID string, cart *models.CartModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.last[sessionID] = data
	return nil
}

func (m *MemorySessions) TakeLastOrdered(_ context.Context, sessionID string) (*models.CartModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.last[sessionID]
	if !ok {
		return nil, nil
	}
	delete(m.last, sessionID)
	return decode(data)
}

// HasCart reports whether a cart is bound to the session
func (m *MemorySessions) HasCart(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[sessionID]
	return ok
}

// MemoryProductCache records evictions so tests can assert on them
type MemoryProductCache struct {
	mu       sync.Mutex
	products map[string]models.Product
	Evicted  []string
}

func NewMemoryProductCache() *MemoryProductCache {
	return &MemoryProductCache{products: map[string]models.Product{}}
}

func (c *MemoryProductCache) GetProduct(_ context.Context, code string) (*models.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[code]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *MemoryProductCache) CacheProduct(_ context.Context, product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.Code] = *product
	return nil
}

func (c *MemoryProductCache) EvictProduct(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, code)
	c.Evicted = append(c.Evicted, code)
	return nil
}

func (c *MemoryProductCache) Has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.products[code]
	return ok
}
