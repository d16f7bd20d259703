package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DocumentTemplate configures one document type the agency can generate
// (booking confirmation, attestation, dummy reservation). FieldsConfig is
// a JSON list of {key, label} objects describing the manual inputs the
// generation form asks for.
type DocumentTemplate struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug         string         `gorm:"type:varchar(60);uniqueIndex;not null"`
	Name         string         `gorm:"not null"`
	FieldsConfig datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GeneratedDocument is one filled-in instance of a template, rendered to
// PDF on demand. Data holds the collected field values plus the
// auto-generated references (reservation_number, company_reference,
// confidential_code).
type GeneratedDocument struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateID uuid.UUID      `gorm:"type:uuid;not null;index"`
	BookingID  *uuid.UUID     `gorm:"type:uuid;index"`
	Data       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time

	Template *DocumentTemplate `gorm:"foreignKey:TemplateID"`
}
