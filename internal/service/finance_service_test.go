package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFinanceSvc() (service.FinanceService, *stubLedgerRepo, *stubBookingRepo, *stubExpenseRepo) {
	ledgerRepo := &stubLedgerRepo{}
	bookingRepo := newStubBookingRepo()
	expenseRepo := newStubExpenseRepo()
	svc := service.NewFinanceService(ledgerRepo, bookingRepo, expenseRepo)
	return svc, ledgerRepo, bookingRepo, expenseRepo
}

func seedEntry(ledgerRepo *stubLedgerRepo, entryType string, debit, credit decimal.Decimal, date time.Time) {
	ledgerRepo.entries = append(ledgerRepo.entries, &model.LedgerEntry{
		ID:        uuid.New(),
		Date:      date,
		Account:   "x",
		EntryType: entryType,
		Debit:     debit,
		Credit:    credit,
		CreatedAt: date,
	})
}

func TestFinanceSummary_CashBalanceIdentity(t *testing.T) {
	svc, ledgerRepo, _, _ := buildFinanceSvc()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	zero := decimal.Zero

	seedEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(3000), zero, day)
	seedEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(1500), zero, day)
	seedEntry(ledgerRepo, model.EntryCustomerRefund, zero, decimal.NewFromInt(400), day)
	seedEntry(ledgerRepo, model.EntrySupplierPayment, decimal.NewFromInt(1200), zero, day)
	seedEntry(ledgerRepo, model.EntryExpense, decimal.NewFromInt(300), zero, day)
	// Accrued payable and its downward correction
	seedEntry(ledgerRepo, model.EntrySupplierCost, zero, decimal.NewFromInt(1000), day)
	seedEntry(ledgerRepo, model.EntrySupplierCost, decimal.NewFromInt(100), zero, day)
	seedEntry(ledgerRepo, model.EntrySaleRevenue, zero, decimal.NewFromInt(5000), day)

	summary, err := svc.Summary(context.Background(), dto.FinanceFilter{})
	require.NoError(t, err)

	assert.True(t, summary.GrossClientCashIn.Equal(decimal.NewFromInt(4500)))
	assert.True(t, summary.ClientRefunds.Equal(decimal.NewFromInt(400)))
	// outflow debit 1200+300+100 minus outflow credit 1000
	assert.True(t, summary.NetSupplierCostPaid.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.TotalRevenueInvoiced.Equal(decimal.NewFromInt(5000)))

	expected := summary.GrossClientCashIn.Sub(summary.ClientRefunds).Sub(summary.NetSupplierCostPaid)
	assert.True(t, summary.NetCashBalance.Equal(expected))
	assert.True(t, summary.NetCashBalance.Equal(decimal.NewFromInt(3500)))
}

func TestFinanceSummary_DateWindowFiltersSums(t *testing.T) {
	svc, ledgerRepo, _, _ := buildFinanceSvc()
	zero := decimal.Zero
	seedEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(100), zero,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	seedEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(200), zero,
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	seedEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(400), zero,
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))

	summary, err := svc.Summary(context.Background(), dto.FinanceFilter{
		DateFrom: "2026-08-10",
		DateTo:   "2026-08-20",
	})
	require.NoError(t, err)
	assert.True(t, summary.GrossClientCashIn.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "2026-08-10", summary.DateFrom)
	assert.Equal(t, "2026-08-20", summary.DateTo)
}

func TestFinanceSummary_UnpaidLiabilitiesSnapshot(t *testing.T) {
	svc, _, bookingRepo, expenseRepo := buildFinanceSvc()
	client := &model.Client{ID: uuid.New(), Name: "Client E"}

	// 700 cost, 200 already allocated: 500 still owed.
	partial := seedBooking(bookingRepo, client, "BK-20260826-001", decimal.NewFromInt(1000), decimal.NewFromInt(700))
	partial.SupplierPaymentStatus = model.SupplierPartial
	partial.Allocations = []model.BookingLedgerAllocation{{
		ID:        uuid.New(),
		BookingID: partial.ID,
		Amount:    decimal.NewFromInt(200),
	}}

	// Fully settled bookings are excluded from the candidate list.
	settled := seedBooking(bookingRepo, client, "BK-20260826-002", decimal.NewFromInt(500), decimal.NewFromInt(300))
	settled.SupplierPaymentStatus = model.SupplierPaid

	expenseRepo.seed("Office rent", decimal.NewFromInt(1200), false)
	expenseRepo.seed("Water", decimal.NewFromInt(40), true)

	summary, err := svc.Summary(context.Background(), dto.FinanceFilter{})
	require.NoError(t, err)
	assert.True(t, summary.UnpaidLiabilities.Equal(decimal.NewFromInt(1700)),
		"500 supplier remainder + 1200 unpaid expenses, got %s", summary.UnpaidLiabilities)
}

func TestFinanceSummary_InvalidDateRejected(t *testing.T) {
	svc, _, _, _ := buildFinanceSvc()

	_, err := svc.Summary(context.Background(), dto.FinanceFilter{DateFrom: "30/08/2026"})
	assert.Error(t, err)
}
