package dto

import "github.com/shopspring/decimal"

type CreateExpenseRequest struct {
	Name       string          `json:"name"     validate:"required"`
	Amount     decimal.Decimal `json:"amount"   validate:"required"`
	DueDate    string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	SupplierID *string         `json:"supplier_id" validate:"omitempty,uuid"`
	Recurrence *string         `json:"recurrence"  validate:"omitempty,oneof=monthly quarterly yearly"`
}

type UpdateExpenseRequest struct {
	Name       *string          `json:"name"`
	Amount     *decimal.Decimal `json:"amount"`
	DueDate    *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	SupplierID *string          `json:"supplier_id" validate:"omitempty,uuid"`
	Recurrence *string          `json:"recurrence"  validate:"omitempty,oneof=monthly quarterly yearly"`
}

type ExpenseResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      string          `json:"due_date"`
	Paid         bool            `json:"paid"`
	SupplierID   *string         `json:"supplier_id,omitempty"`
	SupplierName *string         `json:"supplier_name,omitempty"`
	Recurrence   *string         `json:"recurrence,omitempty"`
}
