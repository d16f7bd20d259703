package repository

import (
	"context"
	"errors"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrClientProtected is returned when deleting a client that is referenced
// by at least one booking (protect-on-delete, audit requirement).
var ErrClientProtected = errors.New("client is referenced by bookings and cannot be deleted")

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, search string) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, search string) ([]model.Client, error) {
	var clients []model.Client
	q := r.db.WithContext(ctx).Model(&model.Client{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR phone ILIKE ? OR passport ILIKE ?", like, like, like)
	}
	err := q.Order("name").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Booking{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrClientProtected
	}
	return r.db.WithContext(ctx).Delete(&model.Client{}, "id = ?", id).Error
}
