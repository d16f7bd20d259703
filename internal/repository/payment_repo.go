package repository

import (
	"context"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateTx(tx *gorm.DB, p *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error)
	// NetPaidTx returns Σ(payments) − Σ(refunds) for a booking, computed
	// inside the running transaction so status recomputes see their own
	// freshly inserted row.
	NetPaidTx(tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error)
	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Preload("Booking").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *paymentRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("date ASC, created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) List(ctx context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Payment{})
	if filter.Method != "" {
		q = q.Where("method = ?", filter.Method)
	}
	if filter.TransactionType != "" {
		q = q.Where("transaction_type = ?", filter.TransactionType)
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Booking").Order("date DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) NetPaidTx(tx *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error) {
	var net decimal.Decimal
	err := tx.Model(&model.Payment{}).
		Select("COALESCE(SUM(CASE WHEN transaction_type = 'payment' THEN amount ELSE -amount END), 0)").
		Where("booking_id = ?", bookingID).
		Scan(&net).Error
	return net, err
}
