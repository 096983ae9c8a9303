package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Products: listing newest first and name search
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "create_date", Value: -1}},
			Options: options.Index().SetName("idx_product_create_date"),
		},
	},
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_product_status"),
		},
	},

	// Orders: order_num must never repeat, even under concurrent checkouts
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "order_num", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_order_num_unique"),
		},
	},
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "details.product_code", Value: 1}},
			Options: options.Index().SetName("idx_order_product_code"),
		},
	},

	// Reservations: per-customer listings and admin status views
	{
		CollectionName: ReservationsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "customer_email", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_reservation_customer_status"),
		},
	},
	{
		CollectionName: ReservationsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "reservation_date", Value: -1}},
			Options: options.Index().SetName("idx_reservation_date"),
		},
	},

	// Persistent carts: one row per user, purged by age
	{
		CollectionName: PersistentCartsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_persistent_cart_user_unique"),
		},
	},
	{
		CollectionName: PersistentCartsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "last_updated", Value: 1}},
			Options: options.Index().SetName("idx_persistent_cart_last_updated"),
		},
	},
}

// EnsureIndexes creates every required index. Existing indexes with the same
// definition are left alone by the server.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	zap.L().Info("Starting index creation...")

	for _, idxConfig := range requiredIndexes {
		collection := s.Collection(idxConfig.CollectionName)

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			zap.L().Error("Error creating index",
				zap.String("collection", idxConfig.CollectionName), zap.Error(err))
			return err
		}

		zap.L().Info("Created index",
			zap.String("index", indexName), zap.String("collection", idxConfig.CollectionName))
	}

	zap.L().Info("All indexes created successfully")
	return nil
}
