package shifts

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-eats-backend/internal/messaging"
	"chat-eats-backend/internal/models"
)

type fakeRepo struct {
	nextID  int64
	entries map[int64][]models.ShiftEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[int64][]models.ShiftEntry)}
}

func (f *fakeRepo) LastEntry(ctx context.Context, courierID int64) (*models.ShiftEntry, error) {
	log := f.entries[courierID]
	if len(log) == 0 {
		return nil, models.ErrNotFound
	}
	cp := log[len(log)-1]
	return &cp, nil
}

func (f *fakeRepo) Insert(ctx context.Context, courierID int64, active bool, ts time.Time) (*models.ShiftEntry, error) {
	f.nextID++
	entry := models.ShiftEntry{ID: f.nextID, CourierID: courierID, Active: active, Timestamp: ts}
	f.entries[courierID] = append(f.entries[courierID], entry)
	cp := entry
	return &cp, nil
}

func newTestService(fr *fakeRepo) (*Service, *time.Time) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(fr, messaging.NopNotifier{}, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestCheckInAlternation(t *testing.T) {
	fr := newFakeRepo()
	svc, now := newTestService(fr)
	ctx := context.Background()
	courier := int64(7)

	// First ever entry: no previous state to measure against.
	elapsed, known, err := svc.CheckIn(ctx, courier, true)
	require.NoError(t, err)
	assert.False(t, known)
	assert.Zero(t, elapsed)

	// Same state again is a conflict, the log stays untouched.
	_, _, err = svc.CheckIn(ctx, courier, true)
	assert.ErrorIs(t, err, models.ErrSameShiftState)
	assert.Len(t, fr.entries[courier], 1)

	// Checking out eight hours later reports the shift length.
	*now = now.Add(8 * time.Hour)
	elapsed, known, err = svc.CheckIn(ctx, courier, false)
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 8*time.Hour, elapsed)

	_, _, err = svc.CheckIn(ctx, courier, false)
	assert.ErrorIs(t, err, models.ErrSameShiftState)

	status, err := svc.CurrentStatus(ctx, courier)
	require.NoError(t, err)
	assert.False(t, status.Active)
}

func TestSeedIsIdempotent(t *testing.T) {
	fr := newFakeRepo()
	svc, _ := newTestService(fr)
	ctx := context.Background()
	courier := int64(9)

	require.NoError(t, svc.Seed(ctx, courier))
	require.Len(t, fr.entries[courier], 1)
	assert.False(t, fr.entries[courier][0].Active)

	// A repeated seed (say, a re-promotion) must not reset the log.
	require.NoError(t, svc.Seed(ctx, courier))
	assert.Len(t, fr.entries[courier], 1)

	// After seeding, the first real check-in has a baseline to measure from.
	_, known, err := svc.CheckIn(ctx, courier, true)
	require.NoError(t, err)
	assert.True(t, known)
}
