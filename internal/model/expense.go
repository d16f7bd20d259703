package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is an operational cost (rent, supplier invoice, utilities).
// Flipping Paid to true posts exactly one ledger entry per expense; the
// idempotency key is the stable account label derived from name and id.
type Expense struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate    time.Time       `gorm:"type:date;not null"`
	Paid       bool            `gorm:"not null;default:false"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index"`
	Recurrence *string         `gorm:"type:varchar(20)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
