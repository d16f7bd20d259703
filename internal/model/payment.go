package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment transaction types.
const (
	TransactionPayment = "payment"
	TransactionRefund  = "refund"
)

// Payment methods.
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodBank   = "bank"
	MethodMobile = "mobile"
	MethodCheck  = "check"
)

// Payment is an append-only financial fact: money received from (or
// returned to) a client. Payments are never updated or deleted;
// corrections create inverse refund rows.
//
// BookingID is nullable: standalone payments exist for the expense /
// supplier ledger use case and do not touch any booking status.
type Payment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID *uuid.UUID `gorm:"type:uuid;index"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Method: "cash" | "card" | "bank" | "mobile" | "check"
	Method string `gorm:"type:varchar(20);not null;default:'cash'"`
	// TransactionType: "payment" | "refund"
	TransactionType string    `gorm:"type:varchar(20);not null;default:'payment'"`
	Date            time.Time `gorm:"type:date;not null"`
	Reference       *string   `gorm:"type:varchar(100)"`

	CreatedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Booking *Booking `gorm:"foreignKey:BookingID"`
}
