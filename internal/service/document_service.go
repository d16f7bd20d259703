package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/config"
	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/infra"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
)

var ErrTemplateNotFound = errors.New("document template not found")

type DocumentService interface {
	CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest) (*dto.TemplateResponse, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, req dto.UpdateTemplateRequest) (*dto.TemplateResponse, error)
	ListTemplates(ctx context.Context) ([]dto.TemplateResponse, error)
	Generate(ctx context.Context, req dto.GenerateDocumentRequest) (*dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, templateID *uuid.UUID) ([]dto.DocumentResponse, error)
	RenderPDF(ctx context.Context, id uuid.UUID) (string, error)
}

type documentService struct {
	documentRepo repository.DocumentRepository
	bookingRepo  repository.BookingRepository
	cfg          *config.Config
}

func NewDocumentService(documentRepo repository.DocumentRepository, bookingRepo repository.BookingRepository, cfg *config.Config) DocumentService {
	return &documentService{documentRepo: documentRepo, bookingRepo: bookingRepo, cfg: cfg}
}

// ─── Templates ───────────────────────────────────────────────────────────────

func (s *documentService) CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	if _, err := s.documentRepo.FindTemplateBySlug(ctx, req.Slug); err == nil {
		return nil, fmt.Errorf("template slug %q already exists", req.Slug)
	}

	raw, err := json.Marshal(req.Fields)
	if err != nil {
		return nil, err
	}
	t := model.DocumentTemplate{
		Slug:         strings.ToLower(req.Slug),
		Name:         req.Name,
		FieldsConfig: raw,
	}
	if err := s.documentRepo.CreateTemplate(ctx, &t); err != nil {
		return nil, err
	}
	return templateToResponse(&t), nil
}

func (s *documentService) UpdateTemplate(ctx context.Context, id uuid.UUID, req dto.UpdateTemplateRequest) (*dto.TemplateResponse, error) {
	t, err := s.documentRepo.FindTemplateByID(ctx, id)
	if err != nil {
		return nil, ErrTemplateNotFound
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Fields != nil {
		raw, err := json.Marshal(req.Fields)
		if err != nil {
			return nil, err
		}
		t.FieldsConfig = raw
	}
	if err := s.documentRepo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return templateToResponse(t), nil
}

func (s *documentService) ListTemplates(ctx context.Context) ([]dto.TemplateResponse, error) {
	ts, err := s.documentRepo.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TemplateResponse, 0, len(ts))
	for i := range ts {
		out = append(out, *templateToResponse(&ts[i]))
	}
	return out, nil
}

// ─── Generation ──────────────────────────────────────────────────────────────

// Generate fills a template instance. The three reference fields are
// auto-generated when the caller leaves them blank: reservation_number is
// a per-day sequence, company_reference is date plus template slug, and
// confidential_code is random.
func (s *documentService) Generate(ctx context.Context, req dto.GenerateDocumentRequest) (*dto.DocumentResponse, error) {
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, errors.New("invalid template id")
	}
	t, err := s.documentRepo.FindTemplateByID(ctx, templateID)
	if err != nil {
		return nil, ErrTemplateNotFound
	}

	var bookingID *uuid.UUID
	if req.BookingID != nil {
		id, err := uuid.Parse(*req.BookingID)
		if err != nil {
			return nil, errors.New("invalid booking id")
		}
		if _, err := s.bookingRepo.FindByID(ctx, id); err != nil {
			return nil, ErrBookingNotFound
		}
		bookingID = &id
	}

	data := make(map[string]string, len(req.Data)+3)
	for k, v := range req.Data {
		data[k] = v
	}

	now := time.Now()
	day := now.Format("2006-01-02")
	if data["reservation_number"] == "" {
		seq, err := s.documentRepo.CountDocumentsForDay(ctx, day)
		if err != nil {
			return nil, err
		}
		data["reservation_number"] = fmt.Sprintf("RSV-%s-%03d", now.Format("20060102"), seq+1)
	}
	if data["company_reference"] == "" {
		data["company_reference"] = fmt.Sprintf("DV-%s-%s", now.Format("20060102"), strings.ToUpper(t.Slug))
	}
	if data["confidential_code"] == "" {
		code, err := randomCode(8)
		if err != nil {
			return nil, err
		}
		data["confidential_code"] = code
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	doc := model.GeneratedDocument{
		TemplateID: t.ID,
		BookingID:  bookingID,
		Data:       raw,
	}
	if err := s.documentRepo.CreateDocument(ctx, &doc); err != nil {
		return nil, err
	}
	doc.Template = t
	return documentToResponse(&doc), nil
}

func (s *documentService) ListDocuments(ctx context.Context, templateID *uuid.UUID) ([]dto.DocumentResponse, error) {
	ds, err := s.documentRepo.ListDocuments(ctx, templateID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(ds))
	for i := range ds {
		out = append(out, *documentToResponse(&ds[i]))
	}
	return out, nil
}

// RenderPDF writes the document PDF to the storage dir and returns the path.
func (s *documentService) RenderPDF(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, id)
	if err != nil {
		return "", errors.New("document not found")
	}
	return infra.GenerateDocumentPDF(doc, s.cfg.AgencyName, s.cfg.PDFStoragePath)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}

func templateToResponse(t *model.DocumentTemplate) *dto.TemplateResponse {
	var fields []dto.TemplateField
	if len(t.FieldsConfig) > 0 {
		_ = json.Unmarshal(t.FieldsConfig, &fields)
	}
	return &dto.TemplateResponse{
		ID:     t.ID.String(),
		Slug:   t.Slug,
		Name:   t.Name,
		Fields: fields,
	}
}

func documentToResponse(d *model.GeneratedDocument) *dto.DocumentResponse {
	var data map[string]string
	if len(d.Data) > 0 {
		_ = json.Unmarshal(d.Data, &data)
	}
	resp := &dto.DocumentResponse{
		ID:        d.ID.String(),
		Data:      data,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
	if d.Template != nil {
		resp.TemplateSlug = d.Template.Slug
		resp.TemplateName = d.Template.Name
	}
	if d.BookingID != nil {
		id := d.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
