package dto

import (
	"time"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
)

type CreateBookingRequest struct {
	UserID     string   `json:"user_id"`
	ShowtimeID string   `json:"showtime_id"`
	Seats      []string `json:"seats"`
}

type CompletePaymentRequest struct {
	PaymentMethod  string         `json:"payment_method"`
	PaymentDetails map[string]any `json:"payment_details,omitempty"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RefundRequest struct {
	Reason string `json:"reason"`
}

type BookingResponse struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	ShowtimeID           string     `json:"showtime_id"`
	Seats                []string   `json:"seats"`
	TotalAmount          float64    `json:"total_amount"`
	Status               string     `json:"status"`
	LockID               *string    `json:"lock_id,omitempty"`
	LockExpiresAt        *time.Time `json:"lock_expires_at,omitempty"`
	PaymentTransactionID *string    `json:"payment_transaction_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BookingResult is the orchestrator's uniform reply shape: a success flag, an
// optional booking and a human-readable message.
type BookingResult struct {
	Success bool             `json:"success"`
	Booking *BookingResponse `json:"booking,omitempty"`
	Message string           `json:"message"`
}

type RefundResponse struct {
	Success             bool   `json:"success"`
	RefundTransactionID string `json:"refund_transaction_id,omitempty"`
	Message             string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                   b.ID,
		UserID:               b.UserID,
		ShowtimeID:           b.ShowtimeID,
		Seats:                b.Seats,
		TotalAmount:          b.TotalAmount,
		Status:               string(b.Status),
		LockID:               b.LockID,
		LockExpiresAt:        b.LockExpiresAt,
		PaymentTransactionID: b.PaymentTransactionID,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}
