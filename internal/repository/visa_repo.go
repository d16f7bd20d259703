package repository

import (
	"context"
	"errors"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisaRepository interface {
	Create(ctx context.Context, v *model.VisaApplication) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.VisaApplication, error)
	Update(ctx context.Context, v *model.VisaApplication) error
	// Upsert creates the application or, when one already exists for the
	// booking (two submits racing on the unique index), reloads the
	// existing row and overwrites it with the new data.
	Upsert(ctx context.Context, v *model.VisaApplication) error
}

type visaRepo struct{ db *gorm.DB }

func NewVisaRepository(db *gorm.DB) VisaRepository { return &visaRepo{db: db} }

func (r *visaRepo) Create(ctx context.Context, v *model.VisaApplication) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *visaRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.VisaApplication, error) {
	var v model.VisaApplication
	err := r.db.WithContext(ctx).First(&v, "booking_id = ?", bookingID).Error
	return &v, err
}

func (r *visaRepo) Update(ctx context.Context, v *model.VisaApplication) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *visaRepo) Upsert(ctx context.Context, v *model.VisaApplication) error {
	err := r.db.WithContext(ctx).Create(v).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	existing, ferr := r.FindByBookingID(ctx, v.BookingID)
	if ferr != nil {
		return err
	}
	v.ID = existing.ID
	return r.db.WithContext(ctx).Save(v).Error
}
