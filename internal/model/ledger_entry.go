package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger entry types. Exactly one of debit/credit is nonzero per row.
const (
	EntrySaleRevenue     = "sale_revenue"     // credit: recognized income
	EntryCustomerPayment = "customer_payment" // debit: cash in
	EntryCustomerRefund  = "customer_refund"  // credit: cash out
	EntrySupplierCost    = "supplier_cost"    // accrued payable
	EntrySupplierPayment = "supplier_payment" // debit: payable settled
	EntryExpense         = "expense"          // debit: operational cost
)

// LedgerEntry is an immutable dated debit/credit fact, the unit of
// financial truth. Entries are NEVER modified or deleted; corrections
// create inverse entries. The single exception is the IsConsolidated
// flip, which is monotonic (false→true only): once consolidated a row is
// frozen, excluded from future daily closings and protected from deletion.
type LedgerEntry struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date    time.Time `gorm:"type:date;not null;index"`
	Account string    `gorm:"type:varchar(100);not null;index"`
	// EntryType: "sale_revenue" | "customer_payment" | "customer_refund" |
	// "supplier_cost" | "supplier_payment" | "expense"
	EntryType string          `gorm:"type:varchar(30);not null;index"`
	Debit     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Credit    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	BookingID      *uuid.UUID `gorm:"type:uuid;index"`
	IsConsolidated bool       `gorm:"not null;default:false;index"`

	CreatedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Booking     *Booking                  `gorm:"foreignKey:BookingID"`
	Allocations []BookingLedgerAllocation `gorm:"foreignKey:LedgerEntryID"`
}

// BookingLedgerAllocation records how much of one bulk supplier payment
// ledger entry applies to one booking's outstanding supplier cost.
// Σ(allocations for a booking) drives that booking's SupplierPaymentStatus.
type BookingLedgerAllocation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LedgerEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	BookingID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
}
