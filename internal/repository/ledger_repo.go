package repository

import (
	"context"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository persists the append-only journal. Entries are never
// updated after creation except for the is_consolidated flag, which only
// flips from false to true.
type LedgerRepository interface {
	CreateTx(tx *gorm.DB, e *model.LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error)
	// FindEligibleForUpdateTx locks and returns the subset of the given
	// entries that is still unconsolidated. Entries consolidated by a
	// concurrent run are silently skipped.
	FindEligibleForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.LedgerEntry, error)
	MarkConsolidatedTx(tx *gorm.DB, ids []uuid.UUID) error
	List(ctx context.Context, f dto.LedgerFilter) ([]model.LedgerEntry, int64, error)
	ListUnconsolidated(ctx context.Context, until *time.Time) ([]model.LedgerEntry, error)
	SumDebit(ctx context.Context, entryTypes []string, from, to *time.Time) (decimal.Decimal, error)
	SumCredit(ctx context.Context, entryTypes []string, from, to *time.Time) (decimal.Decimal, error)
	ExistsAccountEntryTx(tx *gorm.DB, account, entryType string) (bool, error)
	CreateAllocationTx(tx *gorm.DB, a *model.BookingLedgerAllocation) error
	SumAllocationsForBookingTx(tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error)
	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) DB() *gorm.DB { return r.db }

func (r *ledgerRepo) CreateTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Create(e).Error
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	err := r.db.WithContext(ctx).Preload("Booking").First(&e, "id = ?", id).Error
	return &e, err
}

func (r *ledgerRepo) FindEligibleForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND NOT is_consolidated", ids).
		Order("date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) MarkConsolidatedTx(tx *gorm.DB, ids []uuid.UUID) error {
	return tx.Model(&model.LedgerEntry{}).
		Where("id IN ?", ids).
		Update("is_consolidated", true).Error
}

func (r *ledgerRepo) List(ctx context.Context, f dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{})
	if f.EntryType != "" {
		q = q.Where("entry_type = ?", f.EntryType)
	}
	if f.Account != "" {
		q = q.Where("account ILIKE ?", "%"+f.Account+"%")
	}
	if f.BookingID != "" {
		q = q.Where("booking_id = ?", f.BookingID)
	}
	if f.Consolidated != nil {
		q = q.Where("is_consolidated = ?", *f.Consolidated)
	}
	if f.DateFrom != "" {
		q = q.Where("date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("date <= ?", f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.LedgerEntry
	err := q.Preload("Booking").
		Order("date DESC, created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) ListUnconsolidated(ctx context.Context, until *time.Time) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	q := r.db.WithContext(ctx).Where("NOT is_consolidated")
	if until != nil {
		q = q.Where("date <= ?", *until)
	}
	err := q.Order("date ASC, created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) SumDebit(ctx context.Context, entryTypes []string, from, to *time.Time) (decimal.Decimal, error) {
	return r.sumColumn(ctx, "debit", entryTypes, from, to)
}

func (r *ledgerRepo) SumCredit(ctx context.Context, entryTypes []string, from, to *time.Time) (decimal.Decimal, error) {
	return r.sumColumn(ctx, "credit", entryTypes, from, to)
}

func (r *ledgerRepo) sumColumn(ctx context.Context, column string, entryTypes []string, from, to *time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM("+column+"), 0)").
		Where("entry_type IN ?", entryTypes)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	err := q.Scan(&total).Error
	return total, err
}

func (r *ledgerRepo) ExistsAccountEntryTx(tx *gorm.DB, account, entryType string) (bool, error) {
	var count int64
	err := tx.Model(&model.LedgerEntry{}).
		Where("account = ? AND entry_type = ?", account, entryType).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepo) CreateAllocationTx(tx *gorm.DB, a *model.BookingLedgerAllocation) error {
	return tx.Create(a).Error
}

func (r *ledgerRepo) SumAllocationsForBookingTx(tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&model.BookingLedgerAllocation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("booking_id = ?", bookingID).
		Scan(&total).Error
	return total, err
}
