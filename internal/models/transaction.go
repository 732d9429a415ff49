package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	MethodCreditCard    PaymentMethod = "credit_card"
	MethodDebitCard     PaymentMethod = "debit_card"
	MethodDigitalWallet PaymentMethod = "digital_wallet"
	MethodNetBanking    PaymentMethod = "net_banking"
)

type TransactionStatus string

const (
	TxPending  TransactionStatus = "pending"
	TxSuccess  TransactionStatus = "success"
	TxFailed   TransactionStatus = "failed"
	TxRefunded TransactionStatus = "refunded"
)

// TransactionLog is the append-only payment audit trail. Refunds insert a new
// negative-amount row; the original row is only ever marked refunded.
type TransactionLog struct {
	TransactionID   string             `gorm:"primaryKey;type:varchar(36)" json:"transaction_id"`
	BookingID       string             `gorm:"not null;index" json:"booking_id"`
	Amount          float64            `gorm:"not null" json:"amount"`
	PaymentMethod   PaymentMethod      `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status          TransactionStatus  `gorm:"type:varchar(20);not null" json:"status"`
	PaymentDetails  datatypes.JSONMap  `json:"payment_details"`
	GatewayResponse datatypes.JSONMap  `json:"gateway_response"`
	FailureReason   string             `json:"failure_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
