package repository

import (
	"context"

	"github.com/Kalpesh-Vala/movie-ticket-booking-system/internal/models"
	"gorm.io/gorm"
)

type NotificationLogRepository interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
	FindByEventID(ctx context.Context, eventID string) ([]models.NotificationLog, error)
}

type notificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificationLogRepository) FindByEventID(ctx context.Context, eventID string) ([]models.NotificationLog, error) {
	var entries []models.NotificationLog
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
