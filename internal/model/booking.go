package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Booking statuses. The three axes are independent: lifecycle status,
// client payment status and supplier payment status each have their own
// derivation rule in the service layer.
const (
	BookingStatusDraft     = "draft"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusPending  = "pending"
	PaymentStatusAdvance  = "advance"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"

	SupplierUnpaid  = "unpaid"
	SupplierPartial = "partial"
	SupplierPaid    = "paid"
)

// Operation types: the "verb" describing whether a booking creates,
// amends or reverses value.
const (
	OperationIssue  = "issue"
	OperationChange = "change"
	OperationRefund = "refund"
)

// BookingTypes lists the sellable service categories.
var BookingTypes = []string{
	"ticket", "hotel_out", "hotel_loc", "umrah", "trip", "tour",
	"visa_app", "transfer", "dummy",
}

// Booking is the central transactional entity: one sellable transaction
// (ticket, hotel, package, visa service) tied to one Client.
//
// Rows are never deleted; cancellations flip Status and post inverse
// financial facts. IsLedgerPosted guards against duplicate revenue/cost
// postings for the same booking.
type Booking struct {
	ID  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Ref string    `gorm:"type:varchar(30);uniqueIndex;not null"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ParentBookingID links a change/refund operation to its original
	// "issue" booking. Constrained to the same client, one level deep.
	ParentBookingID *uuid.UUID `gorm:"type:uuid;index"`

	BookingType   string `gorm:"type:varchar(40);not null"`
	OperationType string `gorm:"type:varchar(20);not null;default:'issue'"`
	Status        string `gorm:"type:varchar(20);not null;default:'draft'"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending'"`
	// SupplierPaymentStatus is driven by BookingLedgerAllocation sums.
	SupplierPaymentStatus string `gorm:"type:varchar(20);not null;default:'unpaid'"`

	Description  string          `gorm:"type:text"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SupplierCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// VisaFormConfig holds the field keys shown on the public visa intake
	// form for this booking (data-driven, configured per booking).
	VisaFormConfig datatypes.JSON `gorm:"type:jsonb"`

	IsLedgerPosted bool `gorm:"not null;default:false"`

	AssignedToID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Client        *Client                   `gorm:"foreignKey:ClientID"`
	ParentBooking *Booking                  `gorm:"foreignKey:ParentBookingID"`
	Payments      []Payment                 `gorm:"foreignKey:BookingID"`
	Allocations   []BookingLedgerAllocation `gorm:"foreignKey:BookingID"`
}

// PaidAmount derives the net amount received for this booking from its
// loaded Payments: Σ(payments) − Σ(refunds). Requires Payments preloaded.
func (b *Booking) PaidAmount() decimal.Decimal {
	net := decimal.Zero
	for _, p := range b.Payments {
		switch p.TransactionType {
		case TransactionPayment:
			net = net.Add(p.Amount)
		case TransactionRefund:
			net = net.Sub(p.Amount)
		}
	}
	return net
}

// Outstanding is TotalAmount minus the net of all linked payments. May be
// negative (client credit) or positive (client debt).
func (b *Booking) Outstanding() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount())
}
