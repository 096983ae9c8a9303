package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OrderDetail is a denormalized copy of one cart line, immune to later
// product edits or deletions
type OrderDetail struct {
	ProductCode string  `json:"productCode" bson:"product_code"`
	ProductName string  `json:"productName" bson:"product_name"`
	Price       float64 `json:"price" bson:"price"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	Amount      float64 `json:"amount" bson:"amount"`
}

// Order represents a finalized checkout
type Order struct {
	ID              bson.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNum        int           `json:"orderNum" bson:"order_num"`
	OrderDate       time.Time     `json:"orderDate" bson:"order_date"`
	Amount          float64       `json:"amount" bson:"amount"`
	CustomerName    string        `json:"customerName" bson:"customer_name"`
	CustomerAddress string        `json:"customerAddress" bson:"customer_address"`
	CustomerEmail   string        `json:"customerEmail" bson:"customer_email"`
	CustomerPhone   string        `json:"customerPhone" bson:"customer_phone"`
	Details         []OrderDetail `json:"details" bson:"details"`
}

// NewOrderFromCart snapshots every cart line into an order numbered orderNum
func NewOrderFromCart(cart *CartModel, customer *CustomerInfo, orderNum int, orderDate time.Time) *Order {
	order := &Order{
		OrderNum:        orderNum,
		OrderDate:       orderDate,
		Amount:          cart.AmountTotal(),
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		Details:         make([]OrderDetail, 0, len(cart.CartLines)),
	}
	for _, line := range cart.CartLines {
		line.CalculateAmount()
		order.Details = append(order.Details, OrderDetail{
			ProductCode: line.ProductInfo.Code,
			ProductName: line.ProductInfo.Name,
			Price:       line.ProductInfo.Price,
			Quantity:    line.Quantity,
			Amount:      line.Amount,
		})
	}
	return order
}

// GetItemCount returns the total number of items in the order
func (o *Order) GetItemCount() int {
	var count int
	for _, d := range o.Details {
		count += d.Quantity
	}
	return count
}
