package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/events"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrInvalidAmount       = errors.New("payment amount must be positive")
	ErrAmountLimit         = errors.New("payment amount exceeds limit")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotRefundable       = errors.New("can only refund successful transactions")
)

type ChargeRequest struct {
	BookingID      string
	UserID         string
	Amount         float64
	Method         models.PaymentMethod
	PaymentDetails map[string]any
}

type Result struct {
	Success       bool
	TransactionID string
	Status        models.TransactionStatus
	Message       string
}

type RefundResult struct {
	RefundTransactionID string
	Amount              float64
}

type Processor struct {
	txRepo    repository.TransactionRepository
	gateway   Gateway
	publisher events.Publisher
	maxAmount float64
}

func NewProcessor(txRepo repository.TransactionRepository, gateway Gateway, publisher events.Publisher, maxAmount float64) *Processor {
	return &Processor{
		txRepo:    txRepo,
		gateway:   gateway,
		publisher: publisher,
		maxAmount: maxAmount,
	}
}

// Charge attempts a payment and classifies the outcome. Every attempt that
// passes validation is written to the transaction log before the caller sees
// a result, including attempts that die on an internal gateway error.
func (p *Processor) Charge(ctx context.Context, req ChargeRequest) (*Result, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Amount > p.maxAmount {
		return nil, fmt.Errorf("%w: %.2f > %.2f", ErrAmountLimit, req.Amount, p.maxAmount)
	}

	transactionID := uuid.NewString()
	sanitized := SanitizeDetails(req.PaymentDetails)

	gw, err := p.gateway.Charge(ctx, req.Method, req.Amount, req.PaymentDetails)
	if err != nil {
		// Internal gateway failure still produces an audit entry.
		reason := fmt.Sprintf("Payment processing error: %v", err)
		logErr := p.logAttempt(ctx, &models.TransactionLog{
			TransactionID:   transactionID,
			BookingID:       req.BookingID,
			Amount:          req.Amount,
			PaymentMethod:   req.Method,
			Status:          models.TxFailed,
			PaymentDetails:  sanitized,
			GatewayResponse: datatypes.JSONMap{"error": "system_error", "message": err.Error()},
			FailureReason:   reason,
		})
		if logErr != nil {
			return nil, fmt.Errorf("log failed transaction: %w", logErr)
		}
		return &Result{Success: false, Status: models.TxFailed, Message: reason}, nil
	}

	status := models.TxFailed
	message := "Payment processing failed"
	if gw.Approved {
		status = models.TxSuccess
		message = "Payment processed successfully"
	}

	if err := p.logAttempt(ctx, &models.TransactionLog{
		TransactionID:   transactionID,
		BookingID:       req.BookingID,
		Amount:          req.Amount,
		PaymentMethod:   req.Method,
		Status:          status,
		PaymentDetails:  sanitized,
		GatewayResponse: datatypes.JSONMap(gw.Response),
		FailureReason:   gw.FailureReason,
	}); err != nil {
		return nil, fmt.Errorf("log transaction: %w", err)
	}

	if gw.Approved {
		p.publish(ctx, events.TypePaymentSuccess, req.BookingID, req.UserID, map[string]any{
			"transaction_id":   transactionID,
			"amount":           req.Amount,
			"payment_method":   string(req.Method),
			"gateway_response": gw.Response,
		})
		return &Result{Success: true, TransactionID: transactionID, Status: status, Message: message}, nil
	}

	p.publish(ctx, events.TypePaymentFailed, req.BookingID, req.UserID, map[string]any{
		"transaction_id":   transactionID,
		"amount":           req.Amount,
		"payment_method":   string(req.Method),
		"failure_reason":   gw.FailureReason,
		"gateway_response": gw.Response,
	})
	return &Result{Success: false, Status: status, Message: message}, nil
}

// Refund creates a new negative-amount entry for a successful transaction and
// marks the original refunded. Refunding anything else is rejected.
func (p *Processor) Refund(ctx context.Context, originalTransactionID, reason string) (*RefundResult, error) {
	original, err := p.txRepo.FindByID(ctx, originalTransactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, originalTransactionID)
	}
	if original.Status != models.TxSuccess {
		return nil, fmt.Errorf("%w: transaction %s is %s", ErrNotRefundable, originalTransactionID, original.Status)
	}

	refundTransactionID := uuid.NewString()
	refund := &models.TransactionLog{
		TransactionID:  refundTransactionID,
		BookingID:      original.BookingID,
		Amount:         -original.Amount,
		PaymentMethod:  original.PaymentMethod,
		Status:         models.TxRefunded,
		PaymentDetails: original.PaymentDetails,
		GatewayResponse: datatypes.JSONMap{
			"refund_reference":     fmt.Sprintf("ref_%s", uuid.NewString()[:12]),
			"original_transaction": originalTransactionID,
			"reason":               reason,
		},
	}
	if err := p.txRepo.Create(ctx, refund); err != nil {
		return nil, fmt.Errorf("log refund transaction: %w", err)
	}
	if err := p.txRepo.MarkRefunded(ctx, originalTransactionID); err != nil {
		return nil, fmt.Errorf("mark transaction refunded: %w", err)
	}

	p.publish(ctx, events.TypePaymentRefund, original.BookingID, "", map[string]any{
		"original_transaction_id": originalTransactionID,
		"refund_transaction_id":   refundTransactionID,
		"refund_amount":           original.Amount,
		"reason":                  reason,
	})

	return &RefundResult{RefundTransactionID: refundTransactionID, Amount: original.Amount}, nil
}

func (p *Processor) GetTransaction(ctx context.Context, transactionID string) (*models.TransactionLog, error) {
	tx, err := p.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	return tx, nil
}

func (p *Processor) ListBookingTransactions(ctx context.Context, bookingID string) ([]models.TransactionLog, error) {
	return p.txRepo.FindByBookingID(ctx, bookingID)
}

func (p *Processor) logAttempt(ctx context.Context, tx *models.TransactionLog) error {
	tx.CreatedAt = time.Now().UTC()
	tx.UpdatedAt = tx.CreatedAt
	return p.txRepo.Create(ctx, tx)
}

// Publish failures never fail the payment itself; the transaction log is the
// source of truth.
func (p *Processor) publish(ctx context.Context, eventType, bookingID, userID string, data map[string]any) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, bookingID, userID, data); err != nil {
		log.Printf("[Payment] failed to publish %s for booking %s: %v", eventType, bookingID, err)
	}
}

var sensitiveKeys = []string{"cvv", "pin", "password", "otp", "security_code"}

// SanitizeDetails masks the card number and strips secrets so they never
// reach the transaction log.
func SanitizeDetails(details map[string]any) datatypes.JSONMap {
	sanitized := make(datatypes.JSONMap, len(details))
	for k, v := range details {
		sanitized[k] = v
	}

	if raw, ok := sanitized["card_number"].(string); ok && len(raw) >= 4 {
		sanitized["card_number"] = "****-****-****-" + raw[len(raw)-4:]
	}
	for _, key := range sensitiveKeys {
		delete(sanitized, key)
	}
	for k := range sanitized {
		if strings.Contains(strings.ToLower(k), "secret") {
			delete(sanitized, k)
		}
	}
	return sanitized
}
