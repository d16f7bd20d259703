package handler

import (
	"net/http"

	"github.com/bedouifedy-oss/dima-voyage/internal/apierror"
	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/middleware"
	"github.com/bedouifedy-oss/dima-voyage/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingsHandler struct {
	svc     service.BookingService
	invoice service.InvoiceService
}

func NewBookingsHandler(svc service.BookingService, invoice service.InvoiceService) *BookingsHandler {
	return &BookingsHandler{svc: svc, invoice: invoice}
}

// Create godoc
// @Summary Create a booking
// @Description Creates a booking with a generated reference. Confirmed bookings post revenue and supplier cost accruals; an optional initial payment is recorded in the same transaction.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateBookingRequest true "Booking details"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/bookings [post]
func (h *BookingsHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), actorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingsHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft | confirmed | cancelled | all"
// @Param payment_status query string false "pending | advance | paid | refunded"
// @Param booking_type query string false "Booking type"
// @Param client_id query string false "Client UUID"
// @Param search query string false "Matches against the booking reference"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Rows per page (default 50)"
// @Success 200 {object} dto.BookingListResponse
// @Router /v1/bookings [get]
func (h *BookingsHandler) List(c *gin.Context) {
	var filter dto.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list bookings"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a booking
// @Description Edits booking fields. Amount changes on posted bookings append corrective ledger entries; status "cancelled" routes through the cancellation flow.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking UUID"
// @Param body body dto.UpdateBookingRequest true "Fields to change"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/bookings/{id} [patch]
func (h *BookingsHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Update(c.Request.Context(), id, actorID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancel a booking
// @Description Cancels a booking. Any net amount the client already paid comes back as an automatic cash refund in the same transaction.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking UUID"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/bookings/{id}/cancel [post]
func (h *BookingsHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Cancel(c.Request.Context(), id, actorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Invoice godoc
// @Summary Download or email the booking invoice PDF
// @Description Renders the invoice PDF. With ?email=true the invoice is queued for delivery to the client's email instead of returned inline.
// @Tags bookings
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Booking UUID"
// @Param email query bool false "Queue email delivery instead of downloading"
// @Success 200
// @Failure 400 {object} apierror.APIError
// @Router /v1/bookings/{id}/invoice.pdf [get]
func (h *BookingsHandler) Invoice(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if c.Query("email") == "true" {
		if err := h.invoice.Email(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
		return
	}

	path, err := h.invoice.Generate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.FileAttachment(path, "invoice.pdf")
}
