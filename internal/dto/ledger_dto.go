package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// LedgerFilter is bound from the query string of GET /v1/ledger.
type LedgerFilter struct {
	EntryType    string `form:"entry_type"`
	Account      string `form:"account"`
	BookingID    string `form:"booking_id" validate:"omitempty,uuid"`
	Consolidated *bool  `form:"consolidated"`
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	Account        string          `json:"account"`
	EntryType      string          `json:"entry_type"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	BookingID      *string         `json:"booking_id,omitempty"`
	BookingRef     *string         `json:"booking_ref,omitempty"`
	IsConsolidated bool            `json:"is_consolidated"`
	CreatedAt      string          `json:"created_at"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Supplier payment ────────────────────────────────────────────────────────

type PaySupplierRequest struct {
	Account string          `json:"account" validate:"required"`
	Amount  decimal.Decimal `json:"amount"  validate:"required"`
	Date    string          `json:"date"    validate:"omitempty,datetime=2006-01-02"`
	// BookingIDs restricts the allocation to specific bookings; empty
	// means allocate oldest-first across every booking with supplier
	// cost still owed.
	BookingIDs []string `json:"booking_ids" validate:"omitempty,dive,uuid"`
}

type AllocationResult struct {
	BookingID             string          `json:"booking_id"`
	BookingRef            string          `json:"booking_ref"`
	Amount                decimal.Decimal `json:"amount"`
	SupplierPaymentStatus string          `json:"supplier_payment_status"`
}

type PaySupplierResponse struct {
	LedgerEntryID string             `json:"ledger_entry_id"`
	Amount        decimal.Decimal    `json:"amount"`
	Allocations   []AllocationResult `json:"allocations"`
}

// ─── Consolidation ───────────────────────────────────────────────────────────

type ConsolidateRequest struct {
	// EntryIDs selects the cash entries to close; empty means every
	// unconsolidated entry up to Until.
	EntryIDs []string `json:"entry_ids" validate:"omitempty,dive,uuid"`
	Until    string   `json:"until"     validate:"omitempty,datetime=2006-01-02"`
}

type ConsolidateResponse struct {
	RevenueEntryID string          `json:"revenue_entry_id"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	EntriesClosed  int             `json:"entries_closed"`
	Date           string          `json:"date"`
}

// ─── Expense payment ─────────────────────────────────────────────────────────

type PayExpensesRequest struct {
	ExpenseIDs []string `json:"expense_ids" validate:"required,min=1,dive,uuid"`
	Date       string   `json:"date"        validate:"omitempty,datetime=2006-01-02"`
}

type PayExpensesResponse struct {
	Paid    int             `json:"paid"`
	Skipped int             `json:"skipped"`
	Total   decimal.Decimal `json:"total"`
}
