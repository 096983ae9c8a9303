package mongo

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// MaxOrderNum returns the highest allocated order number, or 0 when there are no orders
func (s *Store) MaxOrderNum(ctx context.Context) (int, error) {
	var latest struct {
		OrderNum int `bson:"order_num"`
	}
	err := s.Collection(OrdersCollection).FindOne(ctx,
		bson.D{},
		options.FindOne().
			SetSort(bson.D{{Key: "order_num", Value: -1}}).
			SetProjection(bson.D{{Key: "order_num", Value: 1}}),
	).Decode(&latest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, translateError(err, "orders")
	}
	return latest.OrderNum, nil
}

// InsertOrder stores the order. The unique order_num index turns a lost
// numbering race into a Conflict.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = bson.NewObjectID()
	}
	_, err := s.Collection(OrdersCollection).InsertOne(ctx, order)
	if err != nil {
		order.ID = bson.ObjectID{}
		return translateError(err, "order "+strconv.Itoa(order.OrderNum))
	}
	return nil
}

func (s *Store) GetOrderByNum(ctx context.Context, orderNum int) (*models.Order, error) {
	var order models.Order
	err := s.Collection(OrdersCollection).FindOne(ctx, bson.D{{Key: "order_num", Value: orderNum}}).Decode(&order)
	if err != nil {
		return nil, translateError(err, "order "+strconv.Itoa(orderNum))
	}
	return &order, nil
}
