package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerService interface {
	PaySupplier(ctx context.Context, actorID uuid.UUID, req dto.PaySupplierRequest) (*dto.PaySupplierResponse, error)
	Consolidate(ctx context.Context, actorID uuid.UUID, req dto.ConsolidateRequest) (*dto.ConsolidateResponse, error)
	PayExpenses(ctx context.Context, actorID uuid.UUID, req dto.PayExpensesRequest) (*dto.PayExpensesResponse, error)
	List(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
}

type ledgerService struct {
	ledgerRepo  repository.LedgerRepository
	bookingRepo repository.BookingRepository
	expenseRepo repository.ExpenseRepository
}

func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	bookingRepo repository.BookingRepository,
	expenseRepo repository.ExpenseRepository,
) LedgerService {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		bookingRepo: bookingRepo,
		expenseRepo: expenseRepo,
	}
}

// ── PaySupplier ───────────────────────────────────────────────────────────────
// One atomic unit: a single supplier_payment debit entry plus one
// allocation row per covered booking, oldest first, each allocation
// capped at the booking's remaining supplier cost. Every allocation
// recomputes that booking's supplier_payment_status. Partial application
// is impossible: all rows commit or none do.

func (s *ledgerService) PaySupplier(ctx context.Context, actorID uuid.UUID, req dto.PaySupplierRequest) (*dto.PaySupplierResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("payment amount must be positive")
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		date = parsed
	}

	candidates, err := s.bookingRepo.ListNotSupplierPaid(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.BookingIDs) > 0 {
		selected := make(map[uuid.UUID]bool, len(req.BookingIDs))
		for _, raw := range req.BookingIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid booking_id: %w", err)
			}
			selected[id] = true
		}
		filtered := candidates[:0]
		for _, b := range candidates {
			if selected[b.ID] {
				filtered = append(filtered, b)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		return nil, Warn("no bookings with outstanding supplier cost in the selection")
	}

	var (
		entry   model.LedgerEntry
		results []dto.AllocationResult
	)
	txErr := runTx(ctx, s.ledgerRepo.DB(), func(tx *gorm.DB) error {
		// Ceiling check against the live allocation sums.
		totalOutstanding := decimal.Zero
		outstanding := make([]decimal.Decimal, len(candidates))
		for i := range candidates {
			allocated, err := s.ledgerRepo.SumAllocationsForBookingTx(tx, candidates[i].ID)
			if err != nil {
				return err
			}
			remainder := candidates[i].SupplierCost.Sub(allocated)
			if remainder.IsNegative() {
				remainder = decimal.Zero
			}
			outstanding[i] = remainder
			totalOutstanding = totalOutstanding.Add(remainder)
		}
		if req.Amount.GreaterThan(totalOutstanding) {
			return fmt.Errorf("amount %s exceeds outstanding supplier cost %s",
				req.Amount.StringFixed(2), totalOutstanding.StringFixed(2))
		}

		entry = model.LedgerEntry{
			Date:        date,
			Account:     req.Account,
			EntryType:   model.EntrySupplierPayment,
			Debit:       req.Amount,
			Credit:      decimal.Zero,
			CreatedByID: &actorID,
		}
		if err := s.ledgerRepo.CreateTx(tx, &entry); err != nil {
			return err
		}

		remaining := req.Amount
		for i := range candidates {
			if !remaining.IsPositive() {
				break
			}
			if outstanding[i].IsZero() {
				continue
			}
			b := &candidates[i]
			alloc := decimal.Min(remaining, outstanding[i])

			row := model.BookingLedgerAllocation{
				LedgerEntryID: entry.ID,
				BookingID:     b.ID,
				Amount:        alloc,
			}
			if err := s.ledgerRepo.CreateAllocationTx(tx, &row); err != nil {
				return err
			}
			remaining = remaining.Sub(alloc)

			totalPaid, err := s.ledgerRepo.SumAllocationsForBookingTx(tx, b.ID)
			if err != nil {
				return err
			}
			status := deriveSupplierStatus(totalPaid, b.SupplierCost)
			if status != b.SupplierPaymentStatus {
				if err := s.bookingRepo.UpdateFieldsTx(tx, b.ID, map[string]interface{}{
					"supplier_payment_status": status,
				}); err != nil {
					return err
				}
			}
			results = append(results, dto.AllocationResult{
				BookingID:             b.ID.String(),
				BookingRef:            b.Ref,
				Amount:                alloc,
				SupplierPaymentStatus: status,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.PaySupplierResponse{
		LedgerEntryID: entry.ID.String(),
		Amount:        req.Amount,
		Allocations:   results,
	}, nil
}

// deriveSupplierStatus: paid when total allocations cover the cost,
// partial when something is allocated, unpaid otherwise.
func deriveSupplierStatus(totalPaid, supplierCost decimal.Decimal) string {
	switch {
	case supplierCost.IsPositive() && totalPaid.GreaterThanOrEqual(supplierCost):
		return model.SupplierPaid
	case totalPaid.IsPositive():
		return model.SupplierPartial
	default:
		return model.SupplierUnpaid
	}
}

// ── Consolidate ───────────────────────────────────────────────────────────────
// Daily closing. The selection is re-filtered by is_consolidated=false
// under a row lock at commit time, so two overlapping runs can never
// double-post revenue for the same cash: the second run sees an empty
// (or reduced) eligible set. Gross revenue counts only the cash entries;
// supplier/expense rows in the selection are locked but not summed.

func (s *ledgerService) Consolidate(ctx context.Context, actorID uuid.UUID, req dto.ConsolidateRequest) (*dto.ConsolidateResponse, error) {
	var ids []uuid.UUID
	if len(req.EntryIDs) > 0 {
		for _, raw := range req.EntryIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid entry_id: %w", err)
			}
			ids = append(ids, id)
		}
	} else {
		var until *time.Time
		if req.Until != "" {
			parsed, err := time.Parse("2006-01-02", req.Until)
			if err != nil {
				return nil, fmt.Errorf("invalid until date: %w", err)
			}
			until = &parsed
		}
		entries, err := s.ledgerRepo.ListUnconsolidated(ctx, until)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil, Warn("nothing to consolidate")
	}

	var resp dto.ConsolidateResponse
	txErr := runTx(ctx, s.ledgerRepo.DB(), func(tx *gorm.DB) error {
		eligible, err := s.ledgerRepo.FindEligibleForUpdateTx(tx, ids)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			return Warn("nothing to consolidate")
		}

		gross := decimal.Zero
		latest := eligible[0].Date
		lockIDs := make([]uuid.UUID, 0, len(eligible))
		for _, e := range eligible {
			switch e.EntryType {
			case model.EntryCustomerPayment:
				gross = gross.Add(e.Debit)
			case model.EntryCustomerRefund:
				gross = gross.Sub(e.Credit)
			}
			if e.Date.After(latest) {
				latest = e.Date
			}
			lockIDs = append(lockIDs, e.ID)
		}

		// A selection of cost rows only yields no revenue figure; the
		// rows are still locked.
		if !gross.IsZero() {
			entry := model.LedgerEntry{
				Date:           latest,
				Account:        "Daily closing " + latest.Format("2006-01-02"),
				EntryType:      model.EntrySaleRevenue,
				IsConsolidated: true,
				CreatedByID:    &actorID,
			}
			if gross.IsPositive() {
				entry.Credit = gross
				entry.Debit = decimal.Zero
			} else {
				entry.Debit = gross.Abs()
				entry.Credit = decimal.Zero
			}
			if err := s.ledgerRepo.CreateTx(tx, &entry); err != nil {
				return err
			}
			resp.RevenueEntryID = entry.ID.String()
		}

		if err := s.ledgerRepo.MarkConsolidatedTx(tx, lockIDs); err != nil {
			return err
		}

		resp.GrossRevenue = gross
		resp.EntriesClosed = len(lockIDs)
		resp.Date = latest.Format("2006-01-02")
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

// ── PayExpenses ───────────────────────────────────────────────────────────────
// Marks the selected unpaid expenses paid and posts one expense debit
// row per expense. Idempotent: the stable account label derived from the
// expense identity is the posting key, so re-running never writes a
// second entry for the same expense.

func (s *ledgerService) PayExpenses(ctx context.Context, actorID uuid.UUID, req dto.PayExpensesRequest) (*dto.PayExpensesResponse, error) {
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		date = parsed
	}

	ids := make([]uuid.UUID, 0, len(req.ExpenseIDs))
	for _, raw := range req.ExpenseIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid expense_id: %w", err)
		}
		ids = append(ids, id)
	}

	var resp dto.PayExpensesResponse
	resp.Total = decimal.Zero
	txErr := runTx(ctx, s.expenseRepo.DB(), func(tx *gorm.DB) error {
		expenses, err := s.expenseRepo.FindByIDsTx(tx, ids)
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			return Warn("no matching expenses")
		}

		for i := range expenses {
			e := &expenses[i]
			if e.Paid {
				resp.Skipped++
				continue
			}

			account := expenseAccount(e)
			exists, err := s.ledgerRepo.ExistsAccountEntryTx(tx, account, model.EntryExpense)
			if err != nil {
				return err
			}
			if !exists {
				entry := model.LedgerEntry{
					Date:        date,
					Account:     account,
					EntryType:   model.EntryExpense,
					Debit:       e.Amount,
					Credit:      decimal.Zero,
					CreatedByID: &actorID,
				}
				if err := s.ledgerRepo.CreateTx(tx, &entry); err != nil {
					return err
				}
			}

			e.Paid = true
			if err := s.expenseRepo.UpdateTx(tx, e); err != nil {
				return err
			}
			resp.Paid++
			resp.Total = resp.Total.Add(e.Amount)
		}

		if resp.Paid == 0 {
			return Warn("all selected expenses are already paid")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

// expenseAccount is the stable idempotency key for one expense posting.
func expenseAccount(e *model.Expense) string {
	return fmt.Sprintf("Expense: %s (#%s)", e.Name, e.ID)
}

// ── List ──────────────────────────────────────────────────────────────────────

func (s *ledgerService) List(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	entries, total, err := s.ledgerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		item := dto.LedgerEntryResponse{
			ID:             e.ID.String(),
			Date:           e.Date.Format("2006-01-02"),
			Account:        e.Account,
			EntryType:      e.EntryType,
			Debit:          e.Debit,
			Credit:         e.Credit,
			IsConsolidated: e.IsConsolidated,
			CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		}
		if e.BookingID != nil {
			id := e.BookingID.String()
			item.BookingID = &id
			if e.Booking != nil {
				item.BookingRef = &e.Booking.Ref
			}
		}
		items = append(items, item)
	}
	return &dto.LedgerListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
