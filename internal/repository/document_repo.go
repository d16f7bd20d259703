package repository

import (
	"context"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	CreateTemplate(ctx context.Context, t *model.DocumentTemplate) error
	FindTemplateByID(ctx context.Context, id uuid.UUID) (*model.DocumentTemplate, error)
	FindTemplateBySlug(ctx context.Context, slug string) (*model.DocumentTemplate, error)
	ListTemplates(ctx context.Context) ([]model.DocumentTemplate, error)
	UpdateTemplate(ctx context.Context, t *model.DocumentTemplate) error

	CreateDocument(ctx context.Context, d *model.GeneratedDocument) error
	FindDocumentByID(ctx context.Context, id uuid.UUID) (*model.GeneratedDocument, error)
	ListDocuments(ctx context.Context, templateID *uuid.UUID) ([]model.GeneratedDocument, error)
	CountDocumentsForDay(ctx context.Context, day string) (int64, error)
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepo{db: db} }

func (r *documentRepo) CreateTemplate(ctx context.Context, t *model.DocumentTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *documentRepo) FindTemplateByID(ctx context.Context, id uuid.UUID) (*model.DocumentTemplate, error) {
	var t model.DocumentTemplate
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *documentRepo) FindTemplateBySlug(ctx context.Context, slug string) (*model.DocumentTemplate, error) {
	var t model.DocumentTemplate
	err := r.db.WithContext(ctx).First(&t, "slug = ?", slug).Error
	return &t, err
}

func (r *documentRepo) ListTemplates(ctx context.Context) ([]model.DocumentTemplate, error) {
	var ts []model.DocumentTemplate
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ts).Error
	return ts, err
}

func (r *documentRepo) UpdateTemplate(ctx context.Context, t *model.DocumentTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *documentRepo) CreateDocument(ctx context.Context, d *model.GeneratedDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) FindDocumentByID(ctx context.Context, id uuid.UUID) (*model.GeneratedDocument, error) {
	var d model.GeneratedDocument
	err := r.db.WithContext(ctx).Preload("Template").First(&d, "id = ?", id).Error
	return &d, err
}

func (r *documentRepo) ListDocuments(ctx context.Context, templateID *uuid.UUID) ([]model.GeneratedDocument, error) {
	var ds []model.GeneratedDocument
	q := r.db.WithContext(ctx).Preload("Template")
	if templateID != nil {
		q = q.Where("template_id = ?", *templateID)
	}
	err := q.Order("created_at DESC").Find(&ds).Error
	return ds, err
}

func (r *documentRepo) CountDocumentsForDay(ctx context.Context, day string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GeneratedDocument{}).
		Where("DATE(created_at) = ?", day).
		Count(&count).Error
	return count, err
}
