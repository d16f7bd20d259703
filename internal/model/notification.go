package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusError   = "error"
)

const (
	LanguageTN = "tn"
	LanguageFR = "fr"
)

// Notification is an outbound WhatsApp message with delivery tracking.
// Sends are best effort: a failed send never rolls back financial state,
// it is retried by the cron until the retry budget runs out.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID *uuid.UUID `gorm:"type:uuid;index"`
	Phone     string     `gorm:"type:varchar(40);not null"`
	Body      string     `gorm:"type:text;not null"`
	// Language: "tn" | "fr"
	Language string `gorm:"type:varchar(10);not null;default:'tn'"`
	// Status: "pending" | "sent" | "error"
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	SentAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
