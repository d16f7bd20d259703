package service

import (
	"context"
	"errors"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
)

type ExpenseService interface {
	Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error)
	List(ctx context.Context, onlyUnpaid bool) ([]dto.ExpenseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error)
}

type expenseService struct {
	expenseRepo  repository.ExpenseRepository
	supplierRepo repository.SupplierRepository
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, supplierRepo repository.SupplierRepository) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, supplierRepo: supplierRepo}
}

func (s *expenseService) Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New("expense amount must be positive")
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, errors.New("invalid due date")
	}

	e := model.Expense{
		Name:       req.Name,
		Amount:     req.Amount,
		DueDate:    due,
		Recurrence: req.Recurrence,
	}
	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, errors.New("invalid supplier id")
		}
		if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
			return nil, ErrSupplierNotFound
		}
		e.SupplierID = &supplierID
	}

	if err := s.expenseRepo.Create(ctx, &e); err != nil {
		return nil, err
	}
	return expenseToResponse(&e), nil
}

func (s *expenseService) Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}
	return expenseToResponse(e), nil
}

func (s *expenseService) List(ctx context.Context, onlyUnpaid bool) ([]dto.ExpenseResponse, error) {
	expenses, err := s.expenseRepo.List(ctx, onlyUnpaid)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, *expenseToResponse(&expenses[i]))
	}
	return out, nil
}

// Update edits the expense record. Paid expenses are frozen: their ledger
// entry is already posted and editing the amount would desynchronize them.
func (s *expenseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}
	if e.Paid {
		return nil, errors.New("paid expenses cannot be edited")
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, errors.New("expense amount must be positive")
		}
		e.Amount = *req.Amount
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, errors.New("invalid due date")
		}
		e.DueDate = due
	}
	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, errors.New("invalid supplier id")
		}
		if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
			return nil, ErrSupplierNotFound
		}
		e.SupplierID = &supplierID
	}
	if req.Recurrence != nil {
		e.Recurrence = req.Recurrence
	}

	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return expenseToResponse(e), nil
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	resp := &dto.ExpenseResponse{
		ID:         e.ID.String(),
		Name:       e.Name,
		Amount:     e.Amount,
		DueDate:    e.DueDate.Format("2006-01-02"),
		Paid:       e.Paid,
		Recurrence: e.Recurrence,
	}
	if e.SupplierID != nil {
		id := e.SupplierID.String()
		resp.SupplierID = &id
	}
	if e.Supplier != nil {
		resp.SupplierName = &e.Supplier.Name
	}
	return resp
}
