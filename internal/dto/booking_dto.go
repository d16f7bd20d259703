package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// BookingFilter is bound from the query string of GET /v1/bookings.
type BookingFilter struct {
	Status        string `form:"status"` // draft | confirmed | cancelled | all
	PaymentStatus string `form:"payment_status"`
	BookingType   string `form:"booking_type"`
	ClientID      string `form:"client_id" validate:"omitempty,uuid"`
	Search        string `form:"search"` // matches against ref
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type BookingListItem struct {
	ID                    string          `json:"id"`
	Ref                   string          `json:"ref"`
	ClientName            string          `json:"client_name"`
	BookingType           string          `json:"booking_type"`
	OperationType         string          `json:"operation_type"`
	Status                string          `json:"status"`
	PaymentStatus         string          `json:"payment_status"`
	SupplierPaymentStatus string          `json:"supplier_payment_status"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	Outstanding           decimal.Decimal `json:"outstanding"`
	CreatedAt             string          `json:"created_at"`
}

type BookingListResponse struct {
	Data  []BookingListItem `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateBookingRequest struct {
	ClientID        string  `json:"client_id"         validate:"required,uuid"`
	ParentBookingID *string `json:"parent_booking_id" validate:"omitempty,uuid"`
	BookingType     string  `json:"booking_type"      validate:"required"`
	OperationType   string  `json:"operation_type"    validate:"omitempty,oneof=issue change refund"`
	// Status accepts "quote" as a legacy alias of "draft".
	Status       string          `json:"status"        validate:"omitempty,oneof=draft quote confirmed"`
	Description  string          `json:"description"`
	TotalAmount  decimal.Decimal `json:"total_amount"  validate:"required"`
	SupplierCost decimal.Decimal `json:"supplier_cost"`
	AssignedToID *string         `json:"assigned_to_id" validate:"omitempty,uuid"`

	// PaymentAmount/PaymentMethod record an initial payment in the same
	// request; when set, a Payment is created through the regular bridge
	// right after the booking.
	PaymentAmount *decimal.Decimal `json:"payment_amount"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,oneof=cash card bank mobile check"`
}

type UpdateBookingRequest struct {
	Status       *string          `json:"status" validate:"omitempty,oneof=draft quote confirmed cancelled"`
	Description  *string          `json:"description"`
	TotalAmount  *decimal.Decimal `json:"total_amount"`
	SupplierCost *decimal.Decimal `json:"supplier_cost"`
	BookingType  *string          `json:"booking_type"`
	AssignedToID *string          `json:"assigned_to_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentLine struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	TransactionType string          `json:"transaction_type"`
	Date            string          `json:"date"`
	Reference       *string         `json:"reference,omitempty"`
}

type BookingResponse struct {
	ID                    string          `json:"id"`
	Ref                   string          `json:"ref"`
	ClientID              string          `json:"client_id"`
	ClientName            string          `json:"client_name,omitempty"`
	ParentBookingID       *string         `json:"parent_booking_id,omitempty"`
	ParentBookingRef      *string         `json:"parent_booking_ref,omitempty"`
	BookingType           string          `json:"booking_type"`
	OperationType         string          `json:"operation_type"`
	Status                string          `json:"status"`
	PaymentStatus         string          `json:"payment_status"`
	SupplierPaymentStatus string          `json:"supplier_payment_status"`
	Description           string          `json:"description,omitempty"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	SupplierCost          decimal.Decimal `json:"supplier_cost"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	Outstanding           decimal.Decimal `json:"outstanding"`
	IsLedgerPosted        bool            `json:"is_ledger_posted"`
	Payments              []PaymentLine   `json:"payments,omitempty"`
	CreatedAt             string          `json:"created_at"`
}
