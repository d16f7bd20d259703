package repository

import (
	"context"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, b *model.Booking) error
	Save(ctx context.Context, tx *gorm.DB, b *model.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Booking, error)
	FindByRef(ctx context.Context, ref string) (*model.Booking, error)
	CountByRefPrefix(ctx context.Context, tx *gorm.DB, prefix string) (int64, error)
	ExistsRef(ctx context.Context, tx *gorm.DB, ref string) (bool, error)
	// UpdateFieldsTx performs a field-scoped update (not a full save) so
	// that ledger-posting flags can be flipped without re-running the
	// whole posting cycle.
	UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, filter dto.BookingFilter) ([]model.Booking, int64, error)
	// ListNotSupplierPaid returns bookings whose supplier cost is not fully
	// allocated, with allocations preloaded (unpaid-liabilities snapshot).
	ListNotSupplierPaid(ctx context.Context) ([]model.Booking, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type bookingRepo struct{ db *gorm.DB }

func NewBookingRepository(db *gorm.DB) BookingRepository { return &bookingRepo{db: db} }

func (r *bookingRepo) DB() *gorm.DB { return r.db }

func (r *bookingRepo) Create(ctx context.Context, tx *gorm.DB, b *model.Booking) error {
	return tx.WithContext(ctx).Create(b).Error
}

func (r *bookingRepo) Save(ctx context.Context, tx *gorm.DB, b *model.Booking) error {
	return tx.WithContext(ctx).Save(b).Error
}

func (r *bookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Payments").Preload("Allocations").Preload("ParentBooking").
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *bookingRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := tx.Preload("Payments").First(&b, "id = ?", id).Error
	return &b, err
}

func (r *bookingRepo) FindByRef(ctx context.Context, ref string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).Preload("Client").First(&b, "ref = ?", ref).Error
	return &b, err
}

func (r *bookingRepo) CountByRefPrefix(ctx context.Context, tx *gorm.DB, prefix string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Booking{}).Where("ref LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}

func (r *bookingRepo) ExistsRef(ctx context.Context, tx *gorm.DB, ref string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Booking{}).Where("ref = ?", ref).Count(&count).Error
	return count > 0, err
}

func (r *bookingRepo) UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.Booking{}).Where("id = ?", id).Updates(fields).Error
}

func (r *bookingRepo) List(ctx context.Context, filter dto.BookingFilter) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Booking{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.BookingType != "" {
		q = q.Where("booking_type = ?", filter.BookingType)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Search != "" {
		q = q.Where("ref ILIKE ?", "%"+filter.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Client").Preload("Payments").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&bookings).Error

	return bookings, total, err
}

func (r *bookingRepo) ListNotSupplierPaid(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("supplier_payment_status <> ?", model.SupplierPaid).
		Where("supplier_cost > 0").
		Preload("Allocations").
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}
