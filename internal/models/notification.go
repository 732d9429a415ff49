package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationLog records every delivery attempt the consumer makes.
// Append-only, never mutated after insert.
type NotificationLog struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID      string         `gorm:"not null;index" json:"event_id"`
	Channel      string         `gorm:"type:varchar(10);not null" json:"channel"` // email | sms
	Recipient    string         `gorm:"not null" json:"recipient"`
	Subject      string         `json:"subject"`
	Status       string         `gorm:"type:varchar(10);not null" json:"status"` // sent | failed
	EventPayload datatypes.JSON `json:"event_payload"`
	CreatedAt    time.Time      `json:"created_at"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
}
