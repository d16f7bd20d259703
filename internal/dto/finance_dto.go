package dto

import "github.com/shopspring/decimal"

// FinanceFilter is bound from the query string of GET /v1/finance/summary.
// An empty window means all-time.
type FinanceFilter struct {
	DateFrom string `form:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   validate:"omitempty,datetime=2006-01-02"`
}

// FinanceSummary is the date-windowed financial rollup. NetCashBalance is
// always GrossClientCashIn − ClientRefunds − NetSupplierCostPaid, never
// computed a second way, so the dashboard figures stay mutually
// consistent. UnpaidLiabilities is a point-in-time snapshot and ignores
// the date window.
type FinanceSummary struct {
	GrossClientCashIn   decimal.Decimal `json:"gross_client_cash_in"`
	ClientRefunds       decimal.Decimal `json:"client_refunds"`
	NetSupplierCostPaid decimal.Decimal `json:"net_supplier_cost_paid"`
	NetCashBalance      decimal.Decimal `json:"net_cash_balance"`

	TotalRevenueInvoiced decimal.Decimal `json:"total_revenue_invoiced"`
	UnpaidLiabilities    decimal.Decimal `json:"unpaid_liabilities"`

	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}
