package dto

import "github.com/shopspring/decimal"

// PaymentFilter is bound from the query string of GET /v1/payments.
type PaymentFilter struct {
	Method          string `form:"method"`
	TransactionType string `form:"transaction_type"`
	DateFrom        string `form:"date_from"` // YYYY-MM-DD inclusive
	DateTo          string `form:"date_to"`
	Page            int    `form:"page,default=1"   validate:"min=1"`
	Limit           int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type RecordPaymentRequest struct {
	BookingID       *string         `json:"booking_id" validate:"omitempty,uuid"`
	Amount          decimal.Decimal `json:"amount"     validate:"required"`
	Method          string          `json:"method"     validate:"required,oneof=cash card bank mobile check"`
	TransactionType string          `json:"transaction_type" validate:"omitempty,oneof=payment refund"`
	Date            string          `json:"date"       validate:"omitempty,datetime=2006-01-02"`
	Reference       *string         `json:"reference"`
}

type PaymentResponse struct {
	ID              string          `json:"id"`
	BookingID       *string         `json:"booking_id,omitempty"`
	BookingRef      *string         `json:"booking_ref,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	TransactionType string          `json:"transaction_type"`
	Date            string          `json:"date"`
	Reference       *string         `json:"reference,omitempty"`
	// BookingPaymentStatus reflects the booking's derived status after
	// this payment was bridged into the ledger.
	BookingPaymentStatus *string `json:"booking_payment_status,omitempty"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
