package repository

import (
	"context"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Expense, error)
	List(ctx context.Context, onlyUnpaid bool) ([]model.Expense, error)
	Update(ctx context.Context, e *model.Expense) error
	UpdateTx(tx *gorm.DB, e *model.Expense) error
	SumUnpaid(ctx context.Context) (decimal.Decimal, error)
	DB() *gorm.DB
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) DB() *gorm.DB { return r.db }

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).Preload("Supplier").First(&e, "id = ?", id).Error
	return &e, err
}

func (r *expenseRepo) FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	err := tx.Where("id IN ?", ids).Order("due_date ASC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) List(ctx context.Context, onlyUnpaid bool) ([]model.Expense, error) {
	var expenses []model.Expense
	q := r.db.WithContext(ctx).Preload("Supplier")
	if onlyUnpaid {
		q = q.Where("NOT paid")
	}
	err := q.Order("due_date ASC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) Update(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *expenseRepo) UpdateTx(tx *gorm.DB, e *model.Expense) error {
	return tx.Save(e).Error
}

func (r *expenseRepo) SumUnpaid(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("NOT paid").
		Scan(&total).Error
	return total, err
}
