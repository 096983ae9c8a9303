package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

const (
	DefaultCartTTL      = 1 * time.Hour
	DefaultLastOrderTTL = 15 * time.Minute
)

// CartStore keeps one cart per session id. Every write refreshes the TTL, so
// an idle cart expires CartTTL after its last change.
type CartStore struct {
	client       *redisclient.Client
	cartTTL      time.Duration
	lastOrderTTL time.Duration
}

func NewCartStore(client *redisclient.Client, cartTTL, lastOrderTTL time.Duration) *CartStore {
	if cartTTL <= 0 {
		cartTTL = DefaultCartTTL
	}
	if lastOrderTTL <= 0 {
		lastOrderTTL = DefaultLastOrderTTL
	}
	return &CartStore{client: client, cartTTL: cartTTL, lastOrderTTL: lastOrderTTL}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func lastOrderKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:last", sessionID)
}

func decodeCart(data []byte) (*models.CartModel, error) {
	cart := models.NewCartModel()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, global.Internal(err, "failed to unmarshal cart")
	}
	cart.Normalize()
	return cart, nil
}

// LoadCart returns the session's cart, or nil when the session has none
func (s *CartStore) LoadCart(ctx context.Context, sessionID string) (*models.CartModel, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, global.Internal(err, "failed to load cart for session %s", sessionID)
	}
	return decodeCart(data)
}

func (s *CartStore) SaveCart(ctx context.Context, sessionID string, cart *models.CartModel) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return global.Internal(err, "failed to marshal cart")
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.cartTTL).Err(); err != nil {
		return global.Internal(err, "failed to save cart for session %s", sessionID)
	}
	return nil
}

func (s *CartStore) DeleteCart(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return global.Internal(err, "failed to delete cart for session %s", sessionID)
	}
	return nil
}

// SaveLastOrdered keeps a finalized cart for the confirmation view
func (s *CartStore) SaveLastOrdered(ctx context.Context, sessionID string, cart *models.CartModel) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return global.Internal(err, "failed to marshal cart")
	}
	if err := s.client.Set(ctx, lastOrderKey(sessionID), data, s.lastOrderTTL).Err(); err != nil {
		return global.Internal(err, "failed to save last order for session %s", sessionID)
	}
	return nil
}

// TakeLastOrdered returns the last finalized cart once and discards it
func (s *CartStore) TakeLastOrdered(ctx context.Context, sessionID string) (*models.CartModel, error) {
	data, err := s.client.GetDel(ctx, lastOrderKey(sessionID)).Bytes()
	if errors.Is(err, redisclient.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, global.Internal(err, "failed to load last order for session %s", sessionID)
	}
	return decodeCart(data)
}
