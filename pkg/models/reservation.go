package models

import (
	"strings"
	"time"

	"julianmorley.ca/con-plar/petmart/pkg/global"
)

type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "PENDING"
	ReservationAccepted ReservationStatus = "ACCEPTED"
	ReservationRejected ReservationStatus = "REJECTED"
)

// TerminalReservationStatuses are the outcomes an admin decision produces
var TerminalReservationStatuses = []ReservationStatus{ReservationAccepted, ReservationRejected}

// ParseReservationStatus accepts any casing of PENDING, ACCEPTED or REJECTED
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch status := ReservationStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case ReservationPending, ReservationAccepted, ReservationRejected:
		return status, nil
	default:
		return "", global.InvalidArgument("invalid status %q: must be one of PENDING, ACCEPTED, REJECTED", s).
			WithFields([]global.ValidationError{{Field: "status", Message: "must be one of PENDING, ACCEPTED, REJECTED", Code: "oneof"}})
	}
}

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationAccepted || s == ReservationRejected
}

// ProductStatus returns the product status implied by moving a reservation
// into s. PENDING implies no change.
func (s ReservationStatus) ProductStatus() (string, bool) {
	switch s {
	case ReservationAccepted:
		return ProductStatusAdopted, true
	case ReservationRejected:
		return ProductStatusAvailable, true
	default:
		return "", false
	}
}

// Reservation is an adoption request for a single product
type Reservation struct {
	ID                   int64             `json:"id" bson:"_id"`
	CustomerName         string            `json:"customerName" bson:"customer_name"`
	CustomerEmail        string            `json:"customerEmail" bson:"customer_email"`
	CustomerPhone        string            `json:"customerPhone" bson:"customer_phone"`
	CustomerAddress      string            `json:"customerAddress" bson:"customer_address"`
	PreferredVisitDate   string            `json:"preferredVisitDate,omitempty" bson:"preferred_visit_date,omitempty"`
	Message              string            `json:"message,omitempty" bson:"message,omitempty"`
	ReservationDate      time.Time         `json:"reservationDate" bson:"reservation_date"`
	Status               ReservationStatus `json:"status" bson:"status"`
	ProductCode          *string           `json:"productCode,omitempty" bson:"product_code,omitempty"`
	ReservedItemsDetails string            `json:"reservedItemsDetails" bson:"reserved_items_details"`
}

// CanTransitionTo reports whether an admin may move the reservation to next.
// Terminal reservations accept only their current status.
func (r *Reservation) CanTransitionTo(next ReservationStatus) bool {
	if r.Status.IsTerminal() {
		return r.Status == next
	}
	return true
}

// CanBeWithdrawn checks if the owner may still cancel the reservation
func (r *Reservation) CanBeWithdrawn() bool {
	return r.Status == ReservationPending
}

func (r *Reservation) IsOwnedBy(email string) bool {
	return email != "" && strings.EqualFold(strings.TrimSpace(r.CustomerEmail), strings.TrimSpace(email))
}

// ReservationFilter narrows reservation listings; zero values match everything
type ReservationFilter struct {
	CustomerEmail string
	Statuses      []ReservationStatus
}

type ReservationStatusCount struct {
	Status ReservationStatus `json:"status" bson:"_id"`
	Count  int64             `json:"count" bson:"count"`
	Latest time.Time         `json:"latest" bson:"latest"`
}

type ReservationSummary struct {
	Statuses []ReservationStatusCount `json:"statuses"`
	Total    int64                    `json:"total"`
	Pending  int64                    `json:"pending"`
}

func NewReservationSummary(buckets []ReservationStatusCount) *ReservationSummary {
	summary := &ReservationSummary{Statuses: buckets}
	if summary.Statuses == nil {
		summary.Statuses = []ReservationStatusCount{}
	}
	for _, b := range buckets {
		summary.Total += b.Count
		if b.Status == ReservationPending {
			summary.Pending += b.Count
		}
	}
	return summary
}
