package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerInfoValidate(t *testing.T) {
	info := &CustomerInfo{
		Name:    "  Jamie Rivera ",
		Address: "12 King St W",
		Email:   "Jamie@Example.COM",
		Phone:   "519-555-0142",
	}
	assert.Empty(t, info.Validate())
	assert.True(t, info.Valid)
	assert.Equal(t, "Jamie Rivera", info.Name)
	assert.Equal(t, "jamie@example.com", info.Email)
}

func TestCustomerInfoValidate_ReportsJSONFields(t *testing.T) {
	info := &CustomerInfo{Name: "Jamie", Address: "12 King St W", Email: "not-an-email", Valid: true}
	errs := info.Validate()
	assert.False(t, info.Valid)

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{"email": "email", "phone": "required"}, byField)
}

func TestProductQueryNormalize(t *testing.T) {
	q := ProductQuery{Page: -2, Size: 10_000, SearchTerm: "  corgi "}
	q.Normalize()
	assert.Equal(t, ProductQuery{Page: 0, Size: DefaultPageSize, SearchTerm: "corgi"}, q)

	page := NewProductPage(nil, ProductQuery{Page: 1, Size: 10}, 21)
	assert.Equal(t, 3, page.TotalPages)
	assert.NotNil(t, page.Items)
}

func TestParsePetType(t *testing.T) {
	got, ok := ParsePetType(" bird ")
	assert.True(t, ok)
	assert.Equal(t, PetTypeBird, got)

	_, ok = ParsePetType("dragon")
	assert.False(t, ok)
}
