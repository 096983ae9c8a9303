package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// orderAttempts bounds allocation when a concurrent checkout takes the number first
const orderAttempts = 2

// OrderEngine turns checkout-ready carts into numbered orders
type OrderEngine struct {
	orders OrderStore
	tx     Transactor
	logger *zap.Logger
	now    func() time.Time
}

func NewOrderEngine(orders OrderStore, tx Transactor, logger *zap.Logger) *OrderEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderEngine{orders: orders, tx: tx, logger: logger, now: time.Now}
}

func checkCheckoutReady(cart *models.CartModel, customer *models.CustomerInfo) error {
	if cart == nil || cart.IsEmpty() {
		return global.InvalidState("cart is empty")
	}
	if customer == nil || !customer.Valid {
		return global.InvalidState("valid customer information is required")
	}
	return nil
}

// Finalize persists an order for the cart under the next order number and
// stamps that number on the cart. The cart is otherwise left as is.
func (e *OrderEngine) Finalize(ctx context.Context, cart *models.CartModel, customer *models.CustomerInfo) (*models.Order, error) {
	if err := checkCheckoutReady(cart, customer); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	for attempt := 1; attempt <= orderAttempts; attempt++ {
		order, err = e.allocate(ctx, cart, customer)
		if err == nil {
			break
		}
		if !global.IsKind(err, global.KindConflict) || attempt == orderAttempts {
			return nil, err
		}
		e.logger.Info("order number taken, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}

	stamped := *customer
	cart.OrderNum = order.OrderNum
	cart.CustomerInfo = &stamped

	e.logger.Info("order finalized",
		zap.Int("order_num", order.OrderNum),
		zap.Int("items", order.GetItemCount()),
		zap.Float64("amount", order.Amount))
	return order, nil
}

// allocate reads the current maximum and inserts max+1 in one transaction
func (e *OrderEngine) allocate(ctx context.Context, cart *models.CartModel, customer *models.CustomerInfo) (*models.Order, error) {
	var order *models.Order
	err := e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		maxNum, err := e.orders.MaxOrderNum(ctx)
		if err != nil {
			return err
		}
		order = models.NewOrderFromCart(cart, customer, maxNum+1, e.now().UTC())
		return e.orders.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (e *OrderEngine) GetOrder(ctx context.Context, orderNum int) (*models.Order, error) {
	if orderNum < 1 {
		return nil, global.InvalidArgument("order number must be positive")
	}
	return e.orders.GetOrderByNum(ctx, orderNum)
}
