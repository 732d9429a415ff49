package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/clients"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/events"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/payment"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrSeatsUnavailable = errors.New("failed to lock seats")
	ErrInvalidState     = errors.New("booking is not in a valid state for this operation")
	ErrLockExpired      = errors.New("booking expired, seats are no longer reserved")
	ErrPaymentDeclined  = errors.New("payment failed")
	// ErrCompensationRequired means the payment was captured but the seats
	// could not be secured. The booking has been moved to refund_pending and
	// a refund must be issued out-of-band. This is the one failure that must
	// never be swallowed.
	ErrCompensationRequired = errors.New("payment processed but seat confirmation failed, refund initiated")
)

// PaymentProcessor is the slice of the payment component the saga needs.
type PaymentProcessor interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Result, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID, showtimeID string, seats []string) (*models.Booking, error)
	CompletePayment(ctx context.Context, bookingID string, method models.PaymentMethod, details map[string]any) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	MarkRefunded(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	users     clients.UserService
	cinema    clients.CinemaService
	payments  PaymentProcessor
	publisher events.Publisher
	lockTTL   time.Duration
}

func NewBookingService(
	repo repository.BookingRepository,
	users clients.UserService,
	cinema clients.CinemaService,
	payments PaymentProcessor,
	publisher events.Publisher,
	lockTTL time.Duration,
) BookingService {
	return &bookingService{
		repo:      repo,
		users:     users,
		cinema:    cinema,
		payments:  payments,
		publisher: publisher,
		lockTTL:   lockTTL,
	}
}

// CreateBooking validates the user, prices the seats, locks them with a
// bounded TTL and persists the booking as pending_payment. Lock failure is
// fail-fast: nothing is persisted.
func (s *bookingService) CreateBooking(ctx context.Context, userID, showtimeID string, seats []string) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("validate user: %w", err)
	}

	showtime, err := s.cinema.GetShowtime(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil, ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("fetch showtime: %w", err)
	}

	totalAmount := float64(len(seats)) * showtime.BasePrice
	bookingID := uuid.NewString()

	lock, err := s.cinema.LockSeats(ctx, showtimeID, seats, bookingID, s.lockTTL)
	if err != nil {
		if errors.Is(err, clients.ErrSeatsUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrSeatsUnavailable, err)
		}
		return nil, fmt.Errorf("lock seats: %w", err)
	}

	booking := &models.Booking{
		ID:            bookingID,
		UserID:        userID,
		ShowtimeID:    showtimeID,
		Seats:         seats,
		TotalAmount:   totalAmount,
		Status:        models.StatusPendingPayment,
		LockID:        &lock.LockID,
		LockExpiresAt: &lock.ExpiresAt,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		// No partial state: free the seats we just held.
		if relErr := s.cinema.ReleaseLock(ctx, lock.LockID); relErr != nil {
			log.Printf("[Saga] failed to release lock %s after persist error: %v", lock.LockID, relErr)
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.publish(ctx, events.TypeBookingPendingPayment, bookingID, userID, map[string]any{
		"showtime_id":  showtimeID,
		"seats":        seats,
		"total_amount": totalAmount,
		"lock_id":      lock.LockID,
	})

	return booking, nil
}

// CompletePayment drives the critical saga segment: charge, then confirm
// seats, compensating with a refund transition if confirmation fails after
// the money moved. Seats are always locked before the charge and confirmed
// only after it.
func (s *bookingService) CompletePayment(ctx context.Context, bookingID string, method models.PaymentMethod, details map[string]any) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status != models.StatusPendingPayment {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, booking.Status)
	}

	now := time.Now().UTC()
	if booking.LockExpiresAt != nil && booking.LockExpiresAt.Before(now) {
		return nil, s.cancelExpired(ctx, booking)
	}

	user, err := s.users.GetUser(ctx, booking.UserID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("validate user: %w", err)
	}

	// Display details for the confirmation event; a degraded cinema lookup
	// must not block the payment itself.
	showtime, err := s.cinema.GetShowtime(ctx, booking.ShowtimeID)
	if err != nil {
		log.Printf("[Saga] showtime lookup failed for booking %s: %v", bookingID, err)
		showtime = nil
	}

	result, err := s.payments.Charge(ctx, payment.ChargeRequest{
		BookingID:      bookingID,
		UserID:         booking.UserID,
		Amount:         booking.TotalAmount,
		Method:         method,
		PaymentDetails: details,
	})
	if err != nil {
		return nil, fmt.Errorf("charge payment: %w", err)
	}
	if !result.Success {
		// Booking stays pending_payment; retryable until the lock expires.
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Message)
	}

	if booking.LockID == nil {
		return nil, s.compensate(ctx, booking, result.TransactionID, user.Email, "booking has no seat lock")
	}
	if err := s.cinema.ConfirmSeats(ctx, *booking.LockID, bookingID, booking.UserID); err != nil {
		return nil, s.compensate(ctx, booking, result.TransactionID, user.Email, err.Error())
	}

	confirmedAt := time.Now().UTC()
	err = s.repo.TransitionStatus(ctx, bookingID, models.StatusPendingPayment, models.StatusConfirmed, map[string]any{
		"payment_transaction_id": result.TransactionID,
		"confirmed_at":           confirmedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: booking transitioned concurrently", ErrInvalidState)
		}
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	booking.Status = models.StatusConfirmed
	booking.PaymentTransactionID = &result.TransactionID
	booking.ConfirmedAt = &confirmedAt

	confirmedData := map[string]any{
		"user_email":     user.Email,
		"seats":          []string(booking.Seats),
		"total_amount":   booking.TotalAmount,
		"transaction_id": result.TransactionID,
		"movie_title":    "Unknown Movie",
		"showtime":       "Unknown Time",
		"cinema_name":    "Unknown Cinema",
	}
	if showtime != nil {
		confirmedData["movie_title"] = showtime.MovieTitle
		confirmedData["showtime"] = showtime.StartTime.Format("2006-01-02 03:04 PM")
		confirmedData["cinema_name"] = showtime.CinemaName
	}
	s.publish(ctx, events.TypeBookingConfirmed, bookingID, booking.UserID, confirmedData)

	return booking, nil
}

// cancelExpired transitions an expired pending booking to cancelled. The
// charge is never attempted.
func (s *bookingService) cancelExpired(ctx context.Context, booking *models.Booking) error {
	err := s.repo.TransitionStatus(ctx, booking.ID, models.StatusPendingPayment, models.StatusCancelled, map[string]any{
		"cancellation_reason": "payment timeout",
	})
	if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
		return fmt.Errorf("cancel expired booking: %w", err)
	}

	s.publish(ctx, events.TypeBookingCancelled, booking.ID, booking.UserID, map[string]any{
		"reason": "payment timeout",
	})
	return ErrLockExpired
}

// compensate handles the payment-captured-but-seats-lost window. The booking
// is parked in refund_pending and the refund event goes out so the money can
// be returned out-of-band. The captured payment is never silently dropped.
func (s *bookingService) compensate(ctx context.Context, booking *models.Booking, transactionID, userEmail, cause string) error {
	log.Printf("[Saga] COMPENSATION booking=%s transaction=%s cause=%s", booking.ID, transactionID, cause)

	refundReason := "Seat confirmation failed after payment"
	err := s.repo.TransitionStatus(ctx, booking.ID, models.StatusPendingPayment, models.StatusRefundPending, map[string]any{
		"payment_transaction_id": transactionID,
		"refund_reason":          refundReason,
	})
	if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
		log.Printf("[Saga] COMPENSATION transition failed for booking %s: %v", booking.ID, err)
	}

	s.publish(ctx, events.TypeBookingRefunded, booking.ID, booking.UserID, map[string]any{
		"user_email":     userEmail,
		"transaction_id": transactionID,
		"refund_reason":  refundReason,
	})
	if booking.LockID != nil {
		if relErr := s.cinema.ReleaseLock(ctx, *booking.LockID); relErr != nil {
			log.Printf("[Saga] failed to release lock %s during compensation: %v", *booking.LockID, relErr)
		}
		s.publish(ctx, events.TypeSeatsReleased, booking.ID, booking.UserID, map[string]any{
			"showtime_id": booking.ShowtimeID,
			"seats":       []string(booking.Seats),
			"lock_id":     *booking.LockID,
		})
	}

	return ErrCompensationRequired
}

// CancelBooking is the voluntary path: only a pending booking can be
// cancelled, and its seat lock is released eagerly.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status != models.StatusPendingPayment {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, booking.Status)
	}
	if reason == "" {
		reason = "cancelled by user"
	}

	err = s.repo.TransitionStatus(ctx, bookingID, models.StatusPendingPayment, models.StatusCancelled, map[string]any{
		"cancellation_reason": reason,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: booking transitioned concurrently", ErrInvalidState)
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	if booking.LockID != nil {
		if relErr := s.cinema.ReleaseLock(ctx, *booking.LockID); relErr != nil {
			log.Printf("[Saga] failed to release lock %s for cancelled booking %s: %v", *booking.LockID, bookingID, relErr)
		}
	}

	booking.Status = models.StatusCancelled
	booking.CancellationReason = &reason

	s.publish(ctx, events.TypeBookingCancelled, bookingID, booking.UserID, map[string]any{
		"reason": reason,
	})

	return booking, nil
}

// MarkRefunded closes the compensation loop once the refund has landed.
func (s *bookingService) MarkRefunded(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	err = s.repo.TransitionStatus(ctx, bookingID, models.StatusRefundPending, models.StatusRefunded, nil)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: status is %s", ErrInvalidState, booking.Status)
		}
		return nil, fmt.Errorf("mark booking refunded: %w", err)
	}

	booking.Status = models.StatusRefunded
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// publish is best-effort relative to committed state: a dropped event is a
// lesser failure than a stuck booking.
func (s *bookingService) publish(ctx context.Context, eventType, bookingID, userID string, data map[string]any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, bookingID, userID, data); err != nil {
		log.Printf("[Saga] failed to publish %s for booking %s: %v", eventType, bookingID, err)
	}
}
