package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

func TestCatalogProduct_CacheAside(t *testing.T) {
	env := seededEnv(t)
	ctx := context.Background()

	p, cached, err := env.Shop.Catalog.Product(ctx, "P001")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Biscuit", p.Name)
	assert.True(t, env.Cache.Has("P001"))

	_, cached, err = env.Shop.Catalog.Product(ctx, " P001 ")
	require.NoError(t, err)
	assert.True(t, cached)

	_, _, err = env.Shop.Catalog.Product(ctx, "")
	assert.True(t, global.IsKind(err, global.KindInvalidArgument))

	_, _, err = env.Shop.Catalog.Product(ctx, "NOPE")
	assert.True(t, global.IsKind(err, global.KindNotFound))
}

func TestCatalogUpsert(t *testing.T) {
	env := seededEnv(t)
	ctx := context.Background()

	_, _, err := env.Shop.Catalog.Product(ctx, "P001")
	require.NoError(t, err)

	saved, err := env.Shop.Catalog.Upsert(ctx, "P001", &models.UpsertProductRequest{
		Name:  "Biscuit",
		Type:  "dog",
		Price: 25.0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PetTypeDog, saved.Type)
	assert.Equal(t, models.ProductStatusAvailable, saved.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), saved.CreateDate, "create date is kept")
	assert.False(t, env.Cache.Has("P001"), "edit evicts the cached copy")

	_, err = env.Shop.Catalog.Upsert(ctx, "P009", &models.UpsertProductRequest{Name: "Rex", Type: "dinosaur"})
	var ge *global.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, global.KindInvalidArgument, ge.Kind)
	assert.Equal(t, "type", ge.Fields[0].Field)
}

func TestCatalogDelete_RefusesOrderedProducts(t *testing.T) {
	env := seededEnv(t)
	ctx := context.Background()
	cart, customer := readyCart(t)
	_, err := env.Shop.Orders.Finalize(ctx, cart, customer)
	require.NoError(t, err)

	err = env.Shop.Catalog.Delete(ctx, "P001")
	assert.True(t, global.IsKind(err, global.KindConflict))

	env.Store.PutProduct(models.Product{Code: "P003", Name: "Bubbles", Type: models.PetTypeFish})
	require.NoError(t, env.Shop.Catalog.Delete(ctx, "P003"))

	err = env.Shop.Catalog.Delete(ctx, "P003")
	assert.True(t, global.IsKind(err, global.KindNotFound))
}

func TestCatalogList_PagesNewestFirst(t *testing.T) {
	env := seededEnv(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		env.Store.PutProduct(models.Product{
			Code:       fmt.Sprintf("F%03d", i),
			Name:       fmt.Sprintf("Goldfish %d", i),
			Type:       models.PetTypeFish,
			CreateDate: base.Add(time.Duration(i) * time.Hour),
		})
	}

	page, err := env.Shop.Catalog.List(ctx, models.ProductQuery{Page: 0, Size: 2, SearchTerm: "goldFISH"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "F004", page.Items[0].Code)

	page, err = env.Shop.Catalog.List(ctx, models.ProductQuery{Page: 2, Size: 2, SearchTerm: "goldfish"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "F000", page.Items[0].Code)

	page, err = env.Shop.Catalog.List(ctx, models.ProductQuery{Size: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.TotalItems)
	assert.Len(t, page.Items, 7)
}
