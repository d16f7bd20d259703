package service_test

import (
	"context"
	"fmt"
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

func buildLedgerSvc() (service.LedgerService, *stubLedgerRepo, *stubBookingRepo, *stubExpenseRepo) {
	ledgerRepo := &stubLedgerRepo{}
	bookingRepo := newStubBookingRepo()
	expenseRepo := newStubExpenseRepo()
	svc := service.NewLedgerService(ledgerRepo, bookingRepo, expenseRepo)
	return svc, ledgerRepo, bookingRepo, expenseRepo
}

// ── PaySupplier ───────────────────────────────────────────────────────────────

func TestPaySupplier_AllocatesOldestFirst(t *testing.T) {
	svc, ledgerRepo, bookingRepo, _ := buildLedgerSvc()
	client := &model.Client{ID: uuid.New(), Name: "Client A"}

	older := seedBooking(bookingRepo, client, "BK-20260820-001", decimal.NewFromInt(1000), decimal.NewFromInt(300))
	older.CreatedAt = time.Now().Add(-48 * time.Hour)
	newer := seedBooking(bookingRepo, client, "BK-20260821-001", decimal.NewFromInt(800), decimal.NewFromInt(200))
	newer.CreatedAt = time.Now().Add(-24 * time.Hour)

	resp, err := svc.PaySupplier(context.Background(), uuid.New(), dto.PaySupplierRequest{
		Account: "Tunisair",
		Amount:  decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, older.Ref, resp.Allocations[0].BookingRef)
	assert.True(t, resp.Allocations[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, model.SupplierPaid, resp.Allocations[0].SupplierPaymentStatus)
	assert.Equal(t, newer.Ref, resp.Allocations[1].BookingRef)
	assert.True(t, resp.Allocations[1].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, model.SupplierPartial, resp.Allocations[1].SupplierPaymentStatus)

	payments := ledgerRepo.byType(model.EntrySupplierPayment)
	require.Len(t, payments, 1)
	assert.Equal(t, "Tunisair", payments[0].Account)
	assert.True(t, payments[0].Debit.Equal(decimal.NewFromInt(400)))
	assert.Len(t, ledgerRepo.allocations, 2)

	assert.Equal(t, model.SupplierPaid, older.SupplierPaymentStatus)
	assert.Equal(t, model.SupplierPartial, newer.SupplierPaymentStatus)
}

func TestPaySupplier_ExceedsOutstandingRejected(t *testing.T) {
	svc, ledgerRepo, bookingRepo, _ := buildLedgerSvc()
	client := &model.Client{ID: uuid.New(), Name: "Client B"}
	seedBooking(bookingRepo, client, "BK-20260822-001", decimal.NewFromInt(500), decimal.NewFromInt(250))

	_, err := svc.PaySupplier(context.Background(), uuid.New(), dto.PaySupplierRequest{
		Account: "Hotel Medina",
		Amount:  decimal.NewFromInt(300),
	})
	assert.EqualError(t, err, "amount 300.00 exceeds outstanding supplier cost 250.00")
	assert.Empty(t, ledgerRepo.entries)
	assert.Empty(t, ledgerRepo.allocations)
}

func TestPaySupplier_SecondPaymentSettlesRemainder(t *testing.T) {
	svc, _, bookingRepo, _ := buildLedgerSvc()
	client := &model.Client{ID: uuid.New(), Name: "Client C"}
	booking := seedBooking(bookingRepo, client, "BK-20260823-001", decimal.NewFromInt(900), decimal.NewFromInt(500))

	_, err := svc.PaySupplier(context.Background(), uuid.New(), dto.PaySupplierRequest{
		Account: "Umrah operator",
		Amount:  decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SupplierPartial, booking.SupplierPaymentStatus)

	resp, err := svc.PaySupplier(context.Background(), uuid.New(), dto.PaySupplierRequest{
		Account: "Umrah operator",
		Amount:  decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	require.Len(t, resp.Allocations, 1)
	assert.True(t, resp.Allocations[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, model.SupplierPaid, booking.SupplierPaymentStatus)
}

func TestPaySupplier_EmptySelectionWarns(t *testing.T) {
	svc, _, _, _ := buildLedgerSvc()

	_, err := svc.PaySupplier(context.Background(), uuid.New(), dto.PaySupplierRequest{
		Account: "Anyone",
		Amount:  decimal.NewFromInt(100),
	})
	w, ok := service.AsWarn(err)
	require.True(t, ok)
	assert.Equal(t, "no bookings with outstanding supplier cost in the selection", w.Message)
}

func TestPaySupplier_SelectionRestrictsBookings(t *testing.T) {
	svc, ledgerRepo, bookingRepo, _ := buildLedgerSvc()
	client := &model.Client{ID: uuid.New(), Name: "Client D"}
	first := seedBooking(bookingRepo, client, "BK-20260824-001", decimal.NewFromInt(100), decimal.NewFromInt(100))
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := seedBooking(bookingRepo, client, "BK-20260824-002", decimal.NewFromInt(100), decimal.NewFromInt(100))
	second.CreatedAt = time.Now().Add(-1 * time.Hour)

	resp, err := svc.PaySupplier(context.Background(), uuid.New(), dto.PaySupplierRequest{
		Account:    "Transfer co",
		Amount:     decimal.NewFromInt(100),
		BookingIDs: []string{second.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, resp.Allocations, 1)
	assert.Equal(t, second.Ref, resp.Allocations[0].BookingRef)
	assert.Equal(t, model.SupplierUnpaid, first.SupplierPaymentStatus)
	require.Len(t, ledgerRepo.allocations, 1)
	assert.Equal(t, second.ID, ledgerRepo.allocations[0].BookingID)
}

// ── Consolidate ───────────────────────────────────────────────────────────────

func seedCashEntry(ledgerRepo *stubLedgerRepo, entryType string, amount decimal.Decimal, date time.Time) *model.LedgerEntry {
	e := &model.LedgerEntry{
		ID:        uuid.New(),
		Date:      date,
		Account:   "whatever",
		EntryType: entryType,
		CreatedAt: date,
	}
	if entryType == model.EntryCustomerPayment {
		e.Debit = amount
		e.Credit = decimal.Zero
	} else {
		e.Debit = decimal.Zero
		e.Credit = amount
	}
	ledgerRepo.entries = append(ledgerRepo.entries, e)
	return e
}

func TestConsolidate_NetsCashEntries(t *testing.T) {
	svc, ledgerRepo, _, _ := buildLedgerSvc()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	p1 := seedCashEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(500), day)
	p2 := seedCashEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(300), day)
	r1 := seedCashEntry(ledgerRepo, model.EntryCustomerRefund, decimal.NewFromInt(100), day)

	resp, err := svc.Consolidate(context.Background(), uuid.New(), dto.ConsolidateRequest{
		EntryIDs: []string{p1.ID.String(), p2.ID.String(), r1.ID.String()},
	})
	require.NoError(t, err)
	assert.True(t, resp.GrossRevenue.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 3, resp.EntriesClosed)
	assert.Equal(t, "2026-08-29", resp.Date)

	assert.True(t, p1.IsConsolidated)
	assert.True(t, p2.IsConsolidated)
	assert.True(t, r1.IsConsolidated)

	revenue := ledgerRepo.byType(model.EntrySaleRevenue)
	require.Len(t, revenue, 1)
	assert.Equal(t, "Daily closing 2026-08-29", revenue[0].Account)
	assert.True(t, revenue[0].Credit.Equal(decimal.NewFromInt(700)))
	assert.True(t, revenue[0].IsConsolidated, "closing entry must be born consolidated")
}

func TestConsolidate_SecondRunWarns(t *testing.T) {
	svc, ledgerRepo, _, _ := buildLedgerSvc()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	p := seedCashEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(250), day)
	ids := dto.ConsolidateRequest{EntryIDs: []string{p.ID.String()}}

	_, err := svc.Consolidate(context.Background(), uuid.New(), ids)
	require.NoError(t, err)
	require.Len(t, ledgerRepo.byType(model.EntrySaleRevenue), 1)

	_, err = svc.Consolidate(context.Background(), uuid.New(), ids)
	w, ok := service.AsWarn(err)
	require.True(t, ok)
	assert.Equal(t, "nothing to consolidate", w.Message)
	assert.Len(t, ledgerRepo.byType(model.EntrySaleRevenue), 1)
}

func TestConsolidate_EmptyLedgerWarns(t *testing.T) {
	svc, _, _, _ := buildLedgerSvc()

	_, err := svc.Consolidate(context.Background(), uuid.New(), dto.ConsolidateRequest{})
	_, ok := service.AsWarn(err)
	assert.True(t, ok)
}

func TestConsolidate_ZeroGrossMarksWithoutPosting(t *testing.T) {
	svc, ledgerRepo, _, _ := buildLedgerSvc()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	p := seedCashEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(150), day)
	r := seedCashEntry(ledgerRepo, model.EntryCustomerRefund, decimal.NewFromInt(150), day)

	resp, err := svc.Consolidate(context.Background(), uuid.New(), dto.ConsolidateRequest{
		EntryIDs: []string{p.ID.String(), r.ID.String()},
	})
	require.NoError(t, err)
	assert.True(t, resp.GrossRevenue.IsZero())
	assert.Empty(t, resp.RevenueEntryID)
	assert.Empty(t, ledgerRepo.byType(model.EntrySaleRevenue))
	assert.True(t, p.IsConsolidated)
	assert.True(t, r.IsConsolidated)
}

func TestConsolidate_NegativeGrossDebits(t *testing.T) {
	svc, ledgerRepo, _, _ := buildLedgerSvc()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	r := seedCashEntry(ledgerRepo, model.EntryCustomerRefund, decimal.NewFromInt(120), day)

	resp, err := svc.Consolidate(context.Background(), uuid.New(), dto.ConsolidateRequest{
		EntryIDs: []string{r.ID.String()},
	})
	require.NoError(t, err)
	assert.True(t, resp.GrossRevenue.Equal(decimal.NewFromInt(-120)))

	revenue := ledgerRepo.byType(model.EntrySaleRevenue)
	require.Len(t, revenue, 1)
	assert.True(t, revenue[0].Debit.Equal(decimal.NewFromInt(120)))
	assert.True(t, revenue[0].Credit.IsZero())
}

func TestConsolidate_UntilFiltersSelection(t *testing.T) {
	svc, ledgerRepo, _, _ := buildLedgerSvc()
	early := seedCashEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(100),
		time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	late := seedCashEntry(ledgerRepo, model.EntryCustomerPayment, decimal.NewFromInt(200),
		time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))

	resp, err := svc.Consolidate(context.Background(), uuid.New(), dto.ConsolidateRequest{Until: "2026-08-26"})
	require.NoError(t, err)
	assert.True(t, resp.GrossRevenue.Equal(decimal.NewFromInt(100)))
	assert.True(t, early.IsConsolidated)
	assert.False(t, late.IsConsolidated)
}

// ── PayExpenses ───────────────────────────────────────────────────────────────

func TestPayExpenses_PostsAndMarksPaid(t *testing.T) {
	svc, ledgerRepo, _, expenseRepo := buildLedgerSvc()
	rent := expenseRepo.seed("Office rent", decimal.NewFromInt(1200), false)
	wifi := expenseRepo.seed("Internet", decimal.NewFromInt(80), false)

	resp, err := svc.PayExpenses(context.Background(), uuid.New(), dto.PayExpensesRequest{
		ExpenseIDs: []string{rent.ID.String(), wifi.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Paid)
	assert.Equal(t, 0, resp.Skipped)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(1280)))

	entries := ledgerRepo.byType(model.EntryExpense)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Credit.IsZero())
		assert.True(t, e.Debit.IsPositive())
	}
	assert.True(t, expenseRepo.expenses[rent.ID].Paid)
	assert.True(t, expenseRepo.expenses[wifi.ID].Paid)
}

func TestPayExpenses_SkipsAlreadyPaid(t *testing.T) {
	svc, ledgerRepo, _, expenseRepo := buildLedgerSvc()
	open := expenseRepo.seed("Electricity", decimal.NewFromInt(150), false)
	done := expenseRepo.seed("Water", decimal.NewFromInt(40), true)

	resp, err := svc.PayExpenses(context.Background(), uuid.New(), dto.PayExpensesRequest{
		ExpenseIDs: []string{open.ID.String(), done.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Paid)
	assert.Equal(t, 1, resp.Skipped)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(150)))
	assert.Len(t, ledgerRepo.byType(model.EntryExpense), 1)
}

func TestPayExpenses_AllPaidWarns(t *testing.T) {
	svc, _, _, expenseRepo := buildLedgerSvc()
	done := expenseRepo.seed("Cleaning", decimal.NewFromInt(60), true)

	_, err := svc.PayExpenses(context.Background(), uuid.New(), dto.PayExpensesRequest{
		ExpenseIDs: []string{done.ID.String()},
	})
	w, ok := service.AsWarn(err)
	require.True(t, ok)
	assert.Equal(t, "all selected expenses are already paid", w.Message)
}

func TestPayExpenses_ExistingEntryNotDuplicated(t *testing.T) {
	svc, ledgerRepo, _, expenseRepo := buildLedgerSvc()
	e := expenseRepo.seed("Insurance", decimal.NewFromInt(500), false)

	// A prior posting exists but the paid flag was never flipped.
	ledgerRepo.entries = append(ledgerRepo.entries, &model.LedgerEntry{
		ID:        uuid.New(),
		Date:      time.Now(),
		Account:   fmt.Sprintf("Expense: %s (#%s)", e.Name, e.ID),
		EntryType: model.EntryExpense,
		Debit:     e.Amount,
	})

	resp, err := svc.PayExpenses(context.Background(), uuid.New(), dto.PayExpensesRequest{
		ExpenseIDs: []string{e.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Paid)
	assert.Len(t, ledgerRepo.byType(model.EntryExpense), 1)
	assert.True(t, expenseRepo.expenses[e.ID].Paid)
}
