package service

import (
	"context"
	"errors"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
)

var ErrSupplierNotFound = errors.New("supplier not found")

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, search string) ([]dto.ClientResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	c := model.Client{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Passport: req.Passport,
	}
	if err := s.clientRepo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return clientToResponse(&c), nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrClientNotFound
	}
	return clientToResponse(c), nil
}

func (s *clientService) List(ctx context.Context, search string) ([]dto.ClientResponse, error) {
	clients, err := s.clientRepo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, *clientToResponse(&clients[i]))
	}
	return out, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrClientNotFound
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Passport != nil {
		c.Passport = req.Passport
	}
	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, id); err != nil {
		return ErrClientNotFound
	}
	return s.clientRepo.Delete(ctx, id)
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Passport: c.Passport,
	}
}

// ─── Suppliers ───────────────────────────────────────────────────────────────

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := model.Supplier{Name: req.Name, Contact: req.Contact}
	if err := s.supplierRepo.Create(ctx, &sup); err != nil {
		return nil, err
	}
	return supplierToResponse(&sup), nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSupplierNotFound
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.supplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *supplierToResponse(&suppliers[i]))
	}
	return out, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSupplierNotFound
	}
	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.Contact != nil {
		sup.Contact = req.Contact
	}
	if err := s.supplierRepo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func supplierToResponse(sup *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:      sup.ID.String(),
		Name:    sup.Name,
		Contact: sup.Contact,
	}
}
