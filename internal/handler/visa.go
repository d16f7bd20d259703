package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/apierror"
	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/service"

	"github.com/gin-gonic/gin"
)

type VisaHandler struct {
	svc        service.VisaService
	uploadPath string
}

func NewVisaHandler(svc service.VisaService, uploadPath string) *VisaHandler {
	return &VisaHandler{svc: svc, uploadPath: uploadPath}
}

// ConfigureForm godoc
// @Summary Configure the visa intake form for a booking
// @Tags visa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking UUID"
// @Param body body dto.VisaFormConfigRequest true "Enabled optional fields"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/bookings/{id}/visa-form [put]
func (h *VisaHandler) ConfigureForm(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.VisaFormConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ConfigureForm(c.Request.Context(), id, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// SendLink godoc
// @Summary Send the public form link over WhatsApp
// @Tags visa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking UUID"
// @Param body body dto.SendVisaLinkRequest true "Recipient"
// @Success 202
// @Failure 400 {object} apierror.APIError
// @Router /v1/bookings/{id}/visa-form/send [post]
func (h *VisaHandler) SendLink(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.SendVisaLinkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SendLink(c.Request.Context(), id, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// ListNotifications returns the WhatsApp send history of one booking.
func (h *VisaHandler) ListNotifications(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListNotifications(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PublicForm is unauthenticated: the booking ref in the link is the
// only credential the client holds.
func (h *VisaHandler) PublicForm(c *gin.Context) {
	ref := c.Param("ref")
	resp, err := h.svc.GetForm(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PublicSubmit godoc
// @Summary Public visa dossier submission
// @Description Accepts the multipart dossier. A resubmission for the same booking replaces the previous one.
// @Tags visa
// @Accept multipart/form-data
// @Produce json
// @Param ref path string true "Booking reference"
// @Success 200 {object} dto.VisaSubmitResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/visa/{ref} [post]
func (h *VisaHandler) PublicSubmit(c *gin.Context) {
	ref := c.Param("ref")
	var req dto.VisaSubmitRequest
	if !bindFormAndValidate(c, &req) {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("passport photo is required"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".pdf" {
		c.JSON(http.StatusBadRequest, apierror.New("photo must be jpg, png or pdf"))
		return
	}
	if err := os.MkdirAll(h.uploadPath, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to store photo"))
		return
	}
	photoPath := filepath.Join(h.uploadPath, fmt.Sprintf("passport_%s_%d%s", ref, time.Now().UnixNano(), ext))
	if err := c.SaveUploadedFile(file, photoPath); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to store photo"))
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), ref, req, photoPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
