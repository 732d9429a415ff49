package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShowtime() ShowtimeDetails {
	return ShowtimeDetails{
		ShowtimeID: "r1",
		MovieID:    "m1",
		CinemaID:   "c1",
		BasePrice:  15.99,
		MovieTitle: "Interstellar",
	}
}

func TestMemoryCinema_LockConflicts(t *testing.T) {
	m := NewMemoryCinemaService(testShowtime())
	ctx := context.Background()

	lock, err := m.LockSeats(ctx, "r1", []string{"A1", "A2"}, "b1", 5*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, lock.LockID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), lock.ExpiresAt, time.Second)

	_, err = m.LockSeats(ctx, "r1", []string{"A2", "A3"}, "b2", 5*time.Minute)
	assert.ErrorIs(t, err, ErrSeatsUnavailable)

	// Disjoint seats are fine.
	_, err = m.LockSeats(ctx, "r1", []string{"B1"}, "b3", 5*time.Minute)
	assert.NoError(t, err)
}

func TestMemoryCinema_ExpiredLockIgnored(t *testing.T) {
	m := NewMemoryCinemaService(testShowtime())
	ctx := context.Background()

	base := time.Now()
	m.now = func() time.Time { return base }

	_, err := m.LockSeats(ctx, "r1", []string{"A1"}, "b1", 5*time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(6 * time.Minute) }

	_, err = m.LockSeats(ctx, "r1", []string{"A1"}, "b2", 5*time.Minute)
	assert.NoError(t, err, "an expired lock must not block a new booking")
}

func TestMemoryCinema_ConfirmMakesSeatsPermanent(t *testing.T) {
	m := NewMemoryCinemaService(testShowtime())
	ctx := context.Background()

	lock, err := m.LockSeats(ctx, "r1", []string{"A1"}, "b1", 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, m.ConfirmSeats(ctx, lock.LockID, "b1", "u1"))

	_, err = m.LockSeats(ctx, "r1", []string{"A1"}, "b2", 5*time.Minute)
	assert.ErrorIs(t, err, ErrSeatsUnavailable)
}

func TestMemoryCinema_ConfirmRejectsWrongBooking(t *testing.T) {
	m := NewMemoryCinemaService(testShowtime())
	ctx := context.Background()

	lock, err := m.LockSeats(ctx, "r1", []string{"A1"}, "b1", 5*time.Minute)
	require.NoError(t, err)

	err = m.ConfirmSeats(ctx, lock.LockID, "someone-else", "u1")
	assert.Error(t, err)
}

func TestMemoryCinema_ReleaseFreesSeats(t *testing.T) {
	m := NewMemoryCinemaService(testShowtime())
	ctx := context.Background()

	lock, err := m.LockSeats(ctx, "r1", []string{"A1"}, "b1", 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, m.ReleaseLock(ctx, lock.LockID))

	_, err = m.LockSeats(ctx, "r1", []string{"A1"}, "b2", 5*time.Minute)
	assert.NoError(t, err)
}

func TestMemoryUsers(t *testing.T) {
	m := NewMemoryUserService(User{ID: "u1", Email: "u1@example.com"})

	u, err := m.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", u.Email)

	_, err = m.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
