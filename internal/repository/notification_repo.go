package repository

import (
	"context"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	// ListPendingRetries returns notifications in error state whose
	// next_retry_at has elapsed, oldest first.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Notification, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Notification, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository { return &notificationRepo{db: db} }

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	return &n, err
}

func (r *notificationRepo) Update(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notificationRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Notification, error) {
	var ns []model.Notification
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.NotificationStatusError, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}

func (r *notificationRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Notification, error) {
	var ns []model.Notification
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&ns).Error
	return ns, err
}
