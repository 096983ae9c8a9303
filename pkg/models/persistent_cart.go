package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PersistentCart is the durable copy of an authenticated user's cart.
// CartData holds the JSON encoding of a CartModel.
type PersistentCart struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string        `json:"userId" bson:"user_id"`
	CartData    string        `json:"cartData" bson:"cart_data"`
	LastUpdated time.Time     `json:"lastUpdated" bson:"last_updated"`
}
