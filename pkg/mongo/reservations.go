package mongo

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/petmart/pkg/global"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

const reservationSequence = "reservation_id"

func (s *Store) NextReservationID(ctx context.Context) (int64, error) {
	return s.nextSequence(ctx, reservationSequence)
}

func (s *Store) InsertReservation(ctx context.Context, reservation *models.Reservation) error {
	_, err := s.Collection(ReservationsCollection).InsertOne(ctx, reservation)
	return translateError(err, "reservation "+strconv.FormatInt(reservation.ID, 10))
}

func (s *Store) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.Collection(ReservationsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&reservation)
	if err != nil {
		return nil, translateError(err, "reservation "+strconv.FormatInt(id, 10))
	}
	return &reservation, nil
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id int64, status models.ReservationStatus) error {
	result, err := s.Collection(ReservationsCollection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	)
	if err != nil {
		return translateError(err, "reservation "+strconv.FormatInt(id, 10))
	}
	if result.MatchedCount == 0 {
		return global.NotFound("reservation %d not found", id)
	}
	return nil
}

// DeleteReservation deletes the reservation if it is still in status
func (s *Store) DeleteReservation(ctx context.Context, id int64, status models.ReservationStatus) error {
	result, err := s.Collection(ReservationsCollection).DeleteOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "status", Value: status},
	})
	if err != nil {
		return translateError(err, "reservation "+strconv.FormatInt(id, 10))
	}
	if result.DeletedCount == 0 {
		return global.NotFound("reservation %d not found with status %s", id, status)
	}
	return nil
}

func reservationFilter(f models.ReservationFilter) bson.D {
	filter := bson.D{}
	if f.CustomerEmail != "" {
		filter = append(filter, bson.E{Key: "customer_email", Value: f.CustomerEmail})
	}
	if len(f.Statuses) > 0 {
		filter = append(filter, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: f.Statuses}}})
	}
	return filter
}

// ListReservations returns matching reservations, newest first
func (s *Store) ListReservations(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, error) {
	items, err := findAll[models.Reservation](ctx, s.Collection(ReservationsCollection),
		reservationFilter(f),
		options.Find().SetSort(bson.D{{Key: "reservation_date", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, translateError(err, "reservations")
	}
	return items, nil
}

// DeleteReservations removes every reservation matching the filter. An empty
// filter is refused.
func (s *Store) DeleteReservations(ctx context.Context, f models.ReservationFilter) (int64, error) {
	filter := reservationFilter(f)
	if len(filter) == 0 {
		return 0, global.InvalidArgument("refusing to delete reservations without a filter")
	}
	result, err := s.Collection(ReservationsCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, translateError(err, "reservations")
	}
	return result.DeletedCount, nil
}
