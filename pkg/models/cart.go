package models

import (
	"github.com/shopspring/decimal"
)

// ProductInfo is the product snapshot frozen into a cart line when it is added.
// Later catalog edits do not reach carts that already hold the line.
type ProductInfo struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Type      PetType `json:"type"`
	Breed     string  `json:"breed,omitempty"`
	Price     float64 `json:"price"`
	ImagePath *string `json:"imagePath,omitempty"`
}

type CartLine struct {
	ProductInfo ProductInfo `json:"productInfo"`
	Quantity    int         `json:"quantity"`
	Amount      float64     `json:"amount"`
}

func (l *CartLine) CalculateAmount() {
	l.Amount = lineAmount(l.ProductInfo.Price, l.Quantity).InexactFloat64()
}

func lineAmount(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// QuantityUpdate is one entry of a bulk quantity edit
type QuantityUpdate struct {
	Code     string `json:"code" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CartModel is the in-progress cart bound to one session. Lines are unique
// per product code and never hold a quantity below one.
type CartModel struct {
	OrderNum      int           `json:"orderNum,omitempty"`
	CustomerInfo  *CustomerInfo `json:"customerInfo,omitempty"`
	CartLines     []CartLine    `json:"cartLines"`
	TotalAmount   float64       `json:"totalAmount"`
	TotalQuantity int           `json:"totalQuantity"`
}

func NewCartModel() *CartModel {
	return &CartModel{CartLines: []CartLine{}}
}

func (c *CartModel) findLineIndex(code string) int {
	for i := range c.CartLines {
		if c.CartLines[i].ProductInfo.Code == code {
			return i
		}
	}
	return -1
}

// FindLine returns the line for code, or nil
func (c *CartModel) FindLine(code string) *CartLine {
	if i := c.findLineIndex(code); i >= 0 {
		return &c.CartLines[i]
	}
	return nil
}

func (c *CartModel) removeAt(i int) {
	c.CartLines = append(c.CartLines[:i], c.CartLines[i+1:]...)
}

// AddProduct adds quantity to the line for the product, creating it when absent.
// A negative quantity decrements; a line that drops to zero or below is removed.
// A new line is only created for a positive quantity.
func (c *CartModel) AddProduct(info ProductInfo, quantity int) {
	i := c.findLineIndex(info.Code)
	if i < 0 {
		if quantity > 0 {
			line := CartLine{ProductInfo: info, Quantity: quantity}
			line.CalculateAmount()
			c.CartLines = append(c.CartLines, line)
		}
		c.CalculateTotals()
		return
	}

	newQuantity := c.CartLines[i].Quantity + quantity
	if newQuantity <= 0 {
		c.removeAt(i)
	} else {
		c.CartLines[i].Quantity = newQuantity
		c.CartLines[i].CalculateAmount()
	}
	c.CalculateTotals()
}

// UpdateProduct sets the quantity of an existing line, removing it when the
// quantity is zero or below. It reports whether a line for code existed.
func (c *CartModel) UpdateProduct(code string, quantity int) bool {
	i := c.findLineIndex(code)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.removeAt(i)
	} else {
		c.CartLines[i].Quantity = quantity
		c.CartLines[i].CalculateAmount()
	}
	c.CalculateTotals()
	return true
}

// UpdateQuantity applies a bulk edit, skipping codes not in the cart
func (c *CartModel) UpdateQuantity(updates []QuantityUpdate) {
	for _, u := range updates {
		c.UpdateProduct(u.Code, u.Quantity)
	}
}

// RemoveProduct drops the line for code. Removing an absent code is not an error.
func (c *CartModel) RemoveProduct(code string) bool {
	i := c.findLineIndex(code)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	c.CalculateTotals()
	return true
}

func (c *CartModel) IsEmpty() bool {
	return len(c.CartLines) == 0
}

func (c *CartModel) IsValidCustomer() bool {
	return c.CustomerInfo != nil && c.CustomerInfo.Valid
}

// IsCheckoutReady reports a non-empty cart with validated customer info
func (c *CartModel) IsCheckoutReady() bool {
	return !c.IsEmpty() && c.IsValidCustomer()
}

func (c *CartModel) QuantityTotal() int {
	quantity := 0
	for _, line := range c.CartLines {
		quantity += line.Quantity
	}
	return quantity
}

func (c *CartModel) AmountTotal() float64 {
	total := decimal.Zero
	for _, line := range c.CartLines {
		total = total.Add(lineAmount(line.ProductInfo.Price, line.Quantity))
	}
	return total.InexactFloat64()
}

// CalculateTotals refreshes the derived totals after a mutation
func (c *CartModel) CalculateTotals() {
	if c.CartLines == nil {
		c.CartLines = []CartLine{}
	}
	c.TotalAmount = c.AmountTotal()
	c.TotalQuantity = c.QuantityTotal()
}

// Normalize restores the line invariants on a cart decoded from storage.
// Lines sharing a code are merged into the first one, keeping its frozen
// price; lines left with no code or a quantity below one are dropped.
func (c *CartModel) Normalize() {
	lines := make([]CartLine, 0, len(c.CartLines))
	index := make(map[string]int, len(c.CartLines))
	for _, line := range c.CartLines {
		if line.ProductInfo.Code == "" {
			continue
		}
		if i, ok := index[line.ProductInfo.Code]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductInfo.Code] = len(lines)
		lines = append(lines, line)
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		line.CalculateAmount()
		kept = append(kept, line)
	}
	c.CartLines = kept
	c.CalculateTotals()
}

// Clone returns a deep copy, so a finalized cart can outlive the session cart
func (c *CartModel) Clone() *CartModel {
	out := *c
	out.CartLines = make([]CartLine, len(c.CartLines))
	copy(out.CartLines, c.CartLines)
	if c.CustomerInfo != nil {
		info := *c.CustomerInfo
		out.CustomerInfo = &info
	}
	return &out
}
