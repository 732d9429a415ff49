package repository

import (
	"context"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.TransactionLog) error
	FindByID(ctx context.Context, transactionID string) (*models.TransactionLog, error)
	FindByBookingID(ctx context.Context, bookingID string) ([]models.TransactionLog, error)
	MarkRefunded(ctx context.Context, transactionID string) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.TransactionLog) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, transactionID string) (*models.TransactionLog, error) {
	var tx models.TransactionLog
	if err := r.db.WithContext(ctx).First(&tx, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) FindByBookingID(ctx context.Context, bookingID string) ([]models.TransactionLog, error) {
	var txs []models.TransactionLog
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *transactionRepository) MarkRefunded(ctx context.Context, transactionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.TransactionLog{}).
		Where("transaction_id = ?", transactionID).
		Update("status", models.TxRefunded).Error
}
