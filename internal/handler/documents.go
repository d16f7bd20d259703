package handler

import (
	"net/http"

	"github.com/bedouifedy-oss/dima-voyage/internal/apierror"
	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentsHandler struct{ svc service.DocumentService }

func NewDocumentsHandler(svc service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

func (h *DocumentsHandler) CreateTemplate(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DocumentsHandler) UpdateTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTemplateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateTemplate(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentsHandler) ListTemplates(c *gin.Context) {
	resp, err := h.svc.ListTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list templates"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Generate godoc
// @Summary Generate a document from a template
// @Description Fills a template instance. Blank reservation_number, company_reference and confidential_code fields are auto-generated.
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.GenerateDocumentRequest true "Template and field values"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/documents [post]
func (h *DocumentsHandler) Generate(c *gin.Context) {
	var req dto.GenerateDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DocumentsHandler) List(c *gin.Context) {
	var templateID *uuid.UUID
	if raw := c.Query("template_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid template_id"))
			return
		}
		templateID = &id
	}
	resp, err := h.svc.ListDocuments(c.Request.Context(), templateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list documents"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentsHandler) DownloadPDF(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.FileAttachment(path, "document.pdf")
}
