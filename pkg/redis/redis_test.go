package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), Options{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), Options{Address: addr})
	assert.Error(t, err)
}

func sampleCart() *models.CartModel {
	cart := models.NewCartModel()
	cart.AddProduct(models.ProductInfo{Code: "P001", Name: "Biscuit", Type: models.PetTypeDog, Price: 20.0}, 2)
	return cart
}

func TestCartStore_RoundTripAndTTL(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCartStore(client, time.Hour, 0)
	ctx := context.Background()

	missing, err := store.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SaveCart(ctx, "sess-1", sampleCart()))
	assert.Equal(t, time.Hour, mr.TTL("cart:sess-1"))

	loaded, err := store.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 40.0, loaded.TotalAmount)
	assert.Equal(t, 2, loaded.TotalQuantity)

	mr.FastForward(2 * time.Hour)
	expired, err := store.LoadCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestCartStore_Delete(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCartStore(client, 0, 0)
	ctx := context.Background()

	require.NoError(t, store.SaveCart(ctx, "sess-1", sampleCart()))
	require.NoError(t, store.DeleteCart(ctx, "sess-1"))
	assert.False(t, mr.Exists("cart:sess-1"))
	require.NoError(t, store.DeleteCart(ctx, "sess-1"))
}

func TestCartStore_CorruptCart(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCartStore(client, 0, 0)
	require.NoError(t, mr.Set("cart:sess-1", "{oops"))

	_, err := store.LoadCart(context.Background(), "sess-1")
	assert.True(t, global.IsKind(err, global.KindInternal))
}

func TestCartStore_LoadRepairsLines(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCartStore(client, 0, 0)
	require.NoError(t, mr.Set("cart:sess-1", `{"cartLines":[
		{"productInfo":{"code":"P001","price":20},"quantity":2},
		{"productInfo":{"code":"P002","price":5},"quantity":-1},
		{"productInfo":{"code":"P001","price":20},"quantity":1}
	]}`))

	cart, err := store.LoadCart(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.CartLines, 1)
	assert.Equal(t, 3, cart.TotalQuantity)
	assert.Equal(t, 60.0, cart.TotalAmount)
}

func TestCartStore_LastOrderedIsReadOnce(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewCartStore(client, 0, 5*time.Minute)
	ctx := context.Background()

	cart := sampleCart()
	cart.OrderNum = 12
	require.NoError(t, store.SaveLastOrdered(ctx, "sess-1", cart))
	assert.Equal(t, 5*time.Minute, mr.TTL("cart:sess-1:last"))

	last, err := store.TakeLastOrdered(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 12, last.OrderNum)

	again, err := store.TakeLastOrdered(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestProductCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewProductCache(client, 0)
	ctx := context.Background()

	_, ok, err := cache.GetProduct(ctx, "P001")
	require.NoError(t, err)
	assert.False(t, ok)

	product := &models.Product{Code: "P001", Name: "Biscuit", Type: models.PetTypeDog, Price: 20, Status: models.ProductStatusAvailable}
	require.NoError(t, cache.CacheProduct(ctx, product))
	assert.Equal(t, DefaultProductCacheTTL, mr.TTL("product:P001"))

	cached, ok, err := cache.GetProduct(ctx, "P001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Biscuit", cached.Name)

	require.NoError(t, cache.CacheProduct(ctx, &models.Product{Code: "P002"}))
	require.NoError(t, cache.CacheProduct(ctx, product))
	recent, err := cache.RecentProducts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"P001", "P002"}, recent)

	require.NoError(t, cache.EvictProduct(ctx, "P001"))
	_, ok, err = cache.GetProduct(ctx, "P001")
	require.NoError(t, err)
	assert.False(t, ok)
	recent, err = cache.RecentProducts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"P002"}, recent)
}
