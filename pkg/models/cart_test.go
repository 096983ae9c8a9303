package models

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dog  = ProductInfo{Code: "P001", Name: "Biscuit", Type: PetTypeDog, Price: 20.0}
	cat  = ProductInfo{Code: "P002", Name: "Mochi", Type: PetTypeCat, Price: 5.0}
	fish = ProductInfo{Code: "P003", Name: "Bubbles", Type: PetTypeFish, Price: 0.1}
)

func TestCartTotals_Example(t *testing.T) {
	cart := NewCartModel()
	cart.AddProduct(dog, 2)
	cart.AddProduct(cat, 1)

	assert.Equal(t, 45.0, cart.TotalAmount)
	assert.Equal(t, 3, cart.TotalQuantity)

	assert.True(t, cart.RemoveProduct("P001"))
	assert.Equal(t, 5.0, cart.TotalAmount)
	assert.Equal(t, 1, cart.TotalQuantity)
}

func TestAddProduct_MergesLines(t *testing.T) {
	cart := NewCartModel()
	cart.AddProduct(dog, 1)
	cart.AddProduct(dog, 2)

	require.Len(t, cart.CartLines, 1)
	assert.Equal(t, 3, cart.CartLines[0].Quantity)
	assert.Equal(t, 60.0, cart.CartLines[0].Amount)
}

func TestAddProduct_NonPositive(t *testing.T) {
	cart := NewCartModel()

	cart.AddProduct(dog, 0)
	cart.AddProduct(cat, -3)
	assert.True(t, cart.IsEmpty(), "no line is created for a non-positive quantity")

	cart.AddProduct(dog, 2)
	cart.AddProduct(dog, -1)
	assert.Equal(t, 1, cart.FindLine("P001").Quantity)

	cart.AddProduct(dog, -5)
	assert.Nil(t, cart.FindLine("P001"))
	assert.True(t, cart.IsEmpty())
	assert.Zero(t, cart.TotalAmount)
}

func TestUpdateProduct(t *testing.T) {
	cart := NewCartModel()
	cart.AddProduct(dog, 1)

	assert.False(t, cart.UpdateProduct("P999", 4))
	assert.True(t, cart.UpdateProduct("P001", 4))
	assert.Equal(t, 80.0, cart.TotalAmount)

	assert.True(t, cart.UpdateProduct("P001", -1))
	assert.True(t, cart.IsEmpty())
}

func TestUpdateQuantity_SkipsAbsentCodes(t *testing.T) {
	cart := NewCartModel()
	cart.AddProduct(dog, 1)
	cart.AddProduct(cat, 1)

	cart.UpdateQuantity([]QuantityUpdate{
		{Code: "P001", Quantity: 5},
		{Code: "P002", Quantity: 0},
		{Code: "P404", Quantity: 2},
	})

	require.Len(t, cart.CartLines, 1)
	assert.Equal(t, "P001", cart.CartLines[0].ProductInfo.Code)
	assert.Equal(t, 5, cart.TotalQuantity)
}

func TestRemoveProduct_IsLenient(t *testing.T) {
	cart := NewCartModel()
	assert.False(t, cart.RemoveProduct("P001"))

	cart.AddProduct(cat, 1)
	assert.False(t, cart.RemoveProduct("P001"))
	assert.Len(t, cart.CartLines, 1)
}

func TestNormalize_RepairsDecodedLines(t *testing.T) {
	cheaperDog := dog
	cheaperDog.Price = 15.0
	cart := &CartModel{CartLines: []CartLine{
		{ProductInfo: dog, Quantity: 1},
		{ProductInfo: cat, Quantity: 0},
		{ProductInfo: cheaperDog, Quantity: 2},
		{ProductInfo: fish, Quantity: -3},
		{ProductInfo: ProductInfo{Name: "no code"}, Quantity: 1},
		{ProductInfo: fish, Quantity: 4},
	}, TotalAmount: 999}

	cart.Normalize()

	require.Len(t, cart.CartLines, 1)
	line := cart.CartLines[0]
	assert.Equal(t, "P001", line.ProductInfo.Code)
	assert.Equal(t, 20.0, line.ProductInfo.Price, "first line's price wins")
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 60.0, line.Amount)
	assert.Equal(t, 60.0, cart.TotalAmount)
	assert.Equal(t, 3, cart.TotalQuantity)

	empty := &CartModel{}
	empty.Normalize()
	assert.NotNil(t, empty.CartLines)
	assert.True(t, empty.IsEmpty())
}

func TestAmountTotal_IsExact(t *testing.T) {
	cart := NewCartModel()
	cart.AddProduct(fish, 3)
	cart.AddProduct(ProductInfo{Code: "P004", Price: 0.2}, 1)

	assert.Equal(t, 0.5, cart.TotalAmount)
}

func TestCheckoutReadiness(t *testing.T) {
	cart := NewCartModel()
	assert.False(t, cart.IsCheckoutReady())

	cart.AddProduct(dog, 1)
	assert.False(t, cart.IsCheckoutReady())

	cart.CustomerInfo = &CustomerInfo{Name: "Jamie"}
	assert.False(t, cart.IsValidCustomer())

	cart.CustomerInfo.Valid = true
	assert.True(t, cart.IsCheckoutReady())
}

func TestClone_IsDeep(t *testing.T) {
	cart := NewCartModel()
	cart.AddProduct(dog, 1)
	cart.CustomerInfo = &CustomerInfo{Name: "Jamie", Valid: true}

	clone := cart.Clone()
	cart.AddProduct(dog, 1)
	cart.CustomerInfo.Name = "Kit"

	assert.Equal(t, 1, clone.CartLines[0].Quantity)
	assert.Equal(t, "Jamie", clone.CustomerInfo.Name)
}

// Totals must match the line sums after every mutation, whatever the sequence
func TestCartTotals_HoldAfterEveryMutation(t *testing.T) {
	products := []ProductInfo{dog, cat, fish, {Code: "P004", Price: 12.5}}
	rng := rand.New(rand.NewSource(42))
	cart := NewCartModel()

	for step := 0; step < 500; step++ {
		p := products[rng.Intn(len(products))]
		qty := rng.Intn(7) - 3
		switch rng.Intn(4) {
		case 0:
			cart.AddProduct(p, qty)
		case 1:
			cart.UpdateProduct(p.Code, qty)
		case 2:
			cart.RemoveProduct(p.Code)
		case 3:
			cart.UpdateQuantity([]QuantityUpdate{{Code: p.Code, Quantity: qty}})
		}

		wantAmount := decimal.Zero
		wantQty := 0
		seen := map[string]bool{}
		for _, line := range cart.CartLines {
			require.Greater(t, line.Quantity, 0, "step %d", step)
			require.False(t, seen[line.ProductInfo.Code], "duplicate line at step %d", step)
			seen[line.ProductInfo.Code] = true
			wantAmount = wantAmount.Add(decimal.NewFromFloat(line.ProductInfo.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
			wantQty += line.Quantity
		}
		require.Equal(t, wantAmount.InexactFloat64(), cart.TotalAmount, "step %d", step)
		require.Equal(t, wantQty, cart.TotalQuantity, "step %d", step)
		require.Equal(t, len(cart.CartLines) == 0, cart.IsEmpty())
	}
}
