package clients

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the remote service reported the entity absent.
	ErrNotFound = errors.New("not found")
	// ErrSeatsUnavailable means the lock request was declined.
	ErrSeatsUnavailable = errors.New("seats unavailable")
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type ShowtimeDetails struct {
	ShowtimeID string    `json:"showtime_id"`
	MovieID    string    `json:"movie_id"`
	CinemaID   string    `json:"cinema_id"`
	ScreenID   string    `json:"screen_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	BasePrice  float64   `json:"base_price"`
	MovieTitle string    `json:"movie_title"`
	CinemaName string    `json:"cinema_name"`
}

type LockResult struct {
	LockID    string    `json:"lock_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserService is the user-profile lookup contract.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*User, error)
}

// CinemaService is the seat-inventory contract. LockSeats holds seats for the
// given TTL; ConfirmSeats converts a lock into a permanent reservation;
// ReleaseLock frees a lock early.
type CinemaService interface {
	GetShowtime(ctx context.Context, showtimeID string) (*ShowtimeDetails, error)
	LockSeats(ctx context.Context, showtimeID string, seats []string, bookingID string, ttl time.Duration) (*LockResult, error)
	ConfirmSeats(ctx context.Context, lockID, bookingID, userID string) error
	ReleaseLock(ctx context.Context, lockID string) error
}
