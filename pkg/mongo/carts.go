package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

func (s *Store) FindPersistentCart(ctx context.Context, userID string) (*models.PersistentCart, error) {
	var cart models.PersistentCart
	err := s.Collection(PersistentCartsCollection).FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&cart)
	if err != nil {
		return nil, translateError(err, "persistent cart for "+userID)
	}
	return &cart, nil
}

// UpsertPersistentCart writes the user's serialized cart, creating the row on first use
func (s *Store) UpsertPersistentCart(ctx context.Context, userID, cartData string) error {
	_, err := s.Collection(PersistentCartsCollection).UpdateOne(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "cart_data", Value: cartData},
			{Key: "last_updated", Value: time.Now().UTC()},
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	return translateError(err, "persistent cart for "+userID)
}

// DeletePersistentCart is idempotent
func (s *Store) DeletePersistentCart(ctx context.Context, userID string) error {
	_, err := s.Collection(PersistentCartsCollection).DeleteOne(ctx, bson.D{{Key: "user_id", Value: userID}})
	return translateError(err, "persistent cart for "+userID)
}

// PurgePersistentCarts deletes carts untouched since before
func (s *Store) PurgePersistentCarts(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, global.InvalidArgument("purge cutoff is required")
	}
	result, err := s.Collection(PersistentCartsCollection).DeleteMany(ctx,
		bson.D{{Key: "last_updated", Value: bson.D{{Key: "$lt", Value: before}}}},
	)
	if err != nil {
		return 0, translateError(err, "persistent carts")
	}
	return result.DeletedCount, nil
}
