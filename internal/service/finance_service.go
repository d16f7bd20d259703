package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/shopspring/decimal"
)

// FinanceService produces the read-only dashboard rollups over the
// ledger. Every figure is a straight aggregation; net_cash_balance is
// derived from the other three figures, never computed independently, so
// the displayed numbers always reconcile.
type FinanceService interface {
	Summary(ctx context.Context, filter dto.FinanceFilter) (*dto.FinanceSummary, error)
}

type financeService struct {
	ledgerRepo  repository.LedgerRepository
	bookingRepo repository.BookingRepository
	expenseRepo repository.ExpenseRepository
}

func NewFinanceService(
	ledgerRepo repository.LedgerRepository,
	bookingRepo repository.BookingRepository,
	expenseRepo repository.ExpenseRepository,
) FinanceService {
	return &financeService{
		ledgerRepo:  ledgerRepo,
		bookingRepo: bookingRepo,
		expenseRepo: expenseRepo,
	}
}

// outflowTypes is the entry-type set behind net_supplier_cost_paid.
var outflowTypes = []string{model.EntrySupplierPayment, model.EntryExpense, model.EntrySupplierCost}

func (s *financeService) Summary(ctx context.Context, filter dto.FinanceFilter) (*dto.FinanceSummary, error) {
	var from, to *time.Time
	if filter.DateFrom != "" {
		parsed, err := time.Parse("2006-01-02", filter.DateFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid date_from: %w", err)
		}
		from = &parsed
	}
	if filter.DateTo != "" {
		parsed, err := time.Parse("2006-01-02", filter.DateTo)
		if err != nil {
			return nil, fmt.Errorf("invalid date_to: %w", err)
		}
		to = &parsed
	}

	cashIn, err := s.ledgerRepo.SumDebit(ctx, []string{model.EntryCustomerPayment}, from, to)
	if err != nil {
		return nil, err
	}
	refunds, err := s.ledgerRepo.SumCredit(ctx, []string{model.EntryCustomerRefund}, from, to)
	if err != nil {
		return nil, err
	}
	outDebit, err := s.ledgerRepo.SumDebit(ctx, outflowTypes, from, to)
	if err != nil {
		return nil, err
	}
	outCredit, err := s.ledgerRepo.SumCredit(ctx, outflowTypes, from, to)
	if err != nil {
		return nil, err
	}
	netSupplierCostPaid := outDebit.Sub(outCredit)

	revenueInvoiced, err := s.ledgerRepo.SumCredit(ctx, []string{model.EntrySaleRevenue}, from, to)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.unpaidLiabilities(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.FinanceSummary{
		GrossClientCashIn:   cashIn,
		ClientRefunds:       refunds,
		NetSupplierCostPaid: netSupplierCostPaid,
		// The identity the dashboard depends on
		NetCashBalance:       cashIn.Sub(refunds).Sub(netSupplierCostPaid),
		TotalRevenueInvoiced: revenueInvoiced,
		UnpaidLiabilities:    unpaid,
		DateFrom:             filter.DateFrom,
		DateTo:               filter.DateTo,
	}, nil
}

// unpaidLiabilities is a point-in-time snapshot ignoring the date
// window: unallocated supplier cost across bookings plus unpaid
// expenses.
func (s *financeService) unpaidLiabilities(ctx context.Context) (decimal.Decimal, error) {
	bookings, err := s.bookingRepo.ListNotSupplierPaid(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range bookings {
		allocated := decimal.Zero
		for _, a := range bookings[i].Allocations {
			allocated = allocated.Add(a.Amount)
		}
		remainder := bookings[i].SupplierCost.Sub(allocated)
		if remainder.IsPositive() {
			total = total.Add(remainder)
		}
	}

	unpaidExpenses, err := s.expenseRepo.SumUnpaid(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Add(unpaidExpenses), nil
}
