package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/petmart/pkg/models"
)

// ReservationSummary counts reservations per status for the admin dashboard
func (s *Store) ReservationSummary(ctx context.Context) (*models.ReservationSummary, error) {
	collection := s.Collection(ReservationsCollection)

	pipeline := bson.A{
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$status"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "latest", Value: bson.D{{Key: "$max", Value: "$reservation_date"}}},
			}},
		},
		bson.D{
			{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}},
		},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateError(err, "reservations")
	}
	defer cursor.Close(ctx)

	var buckets []models.ReservationStatusCount
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, translateError(err, "reservations")
	}

	return models.NewReservationSummary(buckets), nil
}
