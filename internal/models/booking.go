package models

import (
	"time"

	"gorm.io/datatypes"
)

type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
	StatusRefundPending  BookingStatus = "refund_pending"
	StatusRefunded       BookingStatus = "refunded"
)

// Booking is owned by the orchestrator and only ever transitions forward:
// pending_payment -> confirmed | cancelled | refund_pending -> refunded.
type Booking struct {
	ID                   string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID               string                      `gorm:"not null;index" json:"user_id"`
	ShowtimeID           string                      `gorm:"not null" json:"showtime_id"`
	Seats                datatypes.JSONSlice[string] `gorm:"not null" json:"seats"`
	TotalAmount          float64                     `gorm:"not null" json:"total_amount"`
	Status               BookingStatus               `gorm:"type:varchar(20);not null;index" json:"status"`
	LockID               *string                     `json:"lock_id,omitempty"`
	LockExpiresAt        *time.Time                  `json:"lock_expires_at,omitempty"`
	PaymentTransactionID *string                     `json:"payment_transaction_id,omitempty"`
	ConfirmedAt          *time.Time                  `json:"confirmed_at,omitempty"`
	CancellationReason   *string                     `json:"cancellation_reason,omitempty"`
	RefundReason         *string                     `json:"refund_reason,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}
