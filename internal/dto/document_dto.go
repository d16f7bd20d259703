package dto

type TemplateField struct {
	Key   string `json:"key"   validate:"required"`
	Label string `json:"label" validate:"required"`
}

type CreateTemplateRequest struct {
	Slug   string          `json:"slug"   validate:"required,min=2,max=60"`
	Name   string          `json:"name"   validate:"required"`
	Fields []TemplateField `json:"fields" validate:"required,min=1,dive"`
}

type UpdateTemplateRequest struct {
	Name   *string         `json:"name"`
	Fields []TemplateField `json:"fields" validate:"omitempty,min=1,dive"`
}

type TemplateResponse struct {
	ID     string          `json:"id"`
	Slug   string          `json:"slug"`
	Name   string          `json:"name"`
	Fields []TemplateField `json:"fields"`
}

type GenerateDocumentRequest struct {
	TemplateID string            `json:"template_id" validate:"required,uuid"`
	BookingID  *string           `json:"booking_id"  validate:"omitempty,uuid"`
	Data       map[string]string `json:"data"        validate:"required"`
}

type DocumentResponse struct {
	ID           string            `json:"id"`
	TemplateSlug string            `json:"template_slug"`
	TemplateName string            `json:"template_name"`
	BookingID    *string           `json:"booking_id,omitempty"`
	Data         map[string]string `json:"data"`
	CreatedAt    string            `json:"created_at"`
}
