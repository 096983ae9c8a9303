package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/petmart/internal/testutil"
	"julianmorley.ca/con-plar/petmart/pkg/models"
)

type failingPurger struct{}

func (failingPurger) PurgePersistentCarts(context.Context, time.Time) (int64, error) {
	return 0, errors.New("store unavailable")
}

func TestPurgeStaleCarts(t *testing.T) {
	store := testutil.NewMemoryStore()
	now := time.Date(2024, 7, 1, 3, 0, 0, 0, time.UTC)
	store.PutPersistentCart(models.PersistentCart{UserID: "old", CartData: "{}", LastUpdated: now.Add(-45 * 24 * time.Hour)})
	store.PutPersistentCart(models.PersistentCart{UserID: "fresh", CartData: "{}", LastUpdated: now.Add(-2 * 24 * time.Hour)})

	s, err := NewScheduler(store, 30*24*time.Hour, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	assert.Equal(t, 1, s.Entries())

	removed, err := s.PurgeStaleCarts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.FindPersistentCart(context.Background(), "fresh")
	assert.NoError(t, err)
	_, err = store.FindPersistentCart(context.Background(), "old")
	assert.Error(t, err)
}

func TestPurgeStaleCarts_Error(t *testing.T) {
	s, err := NewScheduler(failingPurger{}, time.Hour, nil)
	require.NoError(t, err)

	_, err = s.PurgeStaleCarts(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsWithContext(t *testing.T) {
	s, err := NewScheduler(testutil.NewMemoryStore(), time.Hour, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
