package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/petmart/pkg/global"
)

func TestParseReservationStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    ReservationStatus
		wantErr bool
	}{
		{"PENDING", ReservationPending, false},
		{"accepted", ReservationAccepted, false},
		{" Rejected ", ReservationRejected, false},
		{"", "", true},
		{"CANCELLED", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReservationStatus(tt.in)
			if tt.wantErr {
				assert.True(t, global.IsKind(err, global.KindInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReservationTransitions(t *testing.T) {
	pending := &Reservation{Status: ReservationPending}
	assert.True(t, pending.CanTransitionTo(ReservationAccepted))
	assert.True(t, pending.CanTransitionTo(ReservationRejected))
	assert.True(t, pending.CanBeWithdrawn())

	accepted := &Reservation{Status: ReservationAccepted}
	assert.True(t, accepted.CanTransitionTo(ReservationAccepted))
	assert.False(t, accepted.CanTransitionTo(ReservationRejected))
	assert.False(t, accepted.CanTransitionTo(ReservationPending))
	assert.False(t, accepted.CanBeWithdrawn())
}

func TestReservationStatus_ProductStatus(t *testing.T) {
	status, ok := ReservationAccepted.ProductStatus()
	assert.True(t, ok)
	assert.Equal(t, ProductStatusAdopted, status)

	status, ok = ReservationRejected.ProductStatus()
	assert.True(t, ok)
	assert.Equal(t, ProductStatusAvailable, status)

	_, ok = ReservationPending.ProductStatus()
	assert.False(t, ok)
}

func TestReservationIsOwnedBy(t *testing.T) {
	r := &Reservation{CustomerEmail: "jamie@example.com"}
	assert.True(t, r.IsOwnedBy("Jamie@Example.com "))
	assert.False(t, r.IsOwnedBy("kit@example.com"))
	assert.False(t, r.IsOwnedBy(""))
}

func TestNewReservationSummary(t *testing.T) {
	summary := NewReservationSummary([]ReservationStatusCount{
		{Status: ReservationAccepted, Count: 2},
		{Status: ReservationPending, Count: 3},
	})
	assert.Equal(t, int64(5), summary.Total)
	assert.Equal(t, int64(3), summary.Pending)

	empty := NewReservationSummary(nil)
	assert.NotNil(t, empty.Statuses)
	assert.Zero(t, empty.Total)
}
