package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	ProductsCollection        = "products"
	OrdersCollection          = "orders"
	ReservationsCollection    = "reservations"
	PersistentCartsCollection = "persistent_carts"
	CountersCollection        = "counters"
)

// Store is the durable store behind products, orders, reservations and
// persistent carts
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client and verifies the connection with a ping
func Connect(ctx context.Context, uri, databaseName string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	zap.L().Info("Connected to MongoDB", zap.String("database", databaseName))
	return &Store{client: client, db: client.Database(databaseName)}, nil
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
