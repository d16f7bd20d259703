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

type LedgerHandler struct {
	svc     service.LedgerService
	finance service.FinanceService
}

func NewLedgerHandler(svc service.LedgerService, finance service.FinanceService) *LedgerHandler {
	return &LedgerHandler{svc: svc, finance: finance}
}

// List godoc
// @Summary List ledger entries
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Param entry_type query string false "customer_payment | customer_refund | supplier_payment | supplier_cost | sale_revenue | expense"
// @Param account query string false "Account label substring"
// @Param booking_id query string false "Booking UUID"
// @Param consolidated query bool false "Filter by consolidation flag"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {object} dto.LedgerListResponse
// @Router /v1/ledger [get]
func (h *LedgerHandler) List(c *gin.Context) {
	var filter dto.LedgerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list ledger entries"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaySupplier godoc
// @Summary Record a supplier payment
// @Description Posts one supplier payment entry and allocates the amount across bookings with supplier cost still owed, oldest first. Each touched booking gets its supplier payment status re-derived.
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PaySupplierRequest true "Payment details"
// @Success 201 {object} dto.PaySupplierResponse
// @Success 200 {object} apierror.Warning
// @Failure 400 {object} apierror.APIError
// @Router /v1/ledger/supplier-payments [post]
func (h *LedgerHandler) PaySupplier(c *gin.Context) {
	var req dto.PaySupplierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.PaySupplier(c.Request.Context(), actorID, req)
	if err != nil {
		if w, ok := service.AsWarn(err); ok {
			c.JSON(http.StatusOK, apierror.NewWarning(w.Message))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Consolidate godoc
// @Summary Daily closing
// @Description Locks the selected unconsolidated cash entries, nets them into one sale revenue entry and marks the whole selection consolidated. A selection that is already closed comes back as a warning, not an error.
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConsolidateRequest true "Selection"
// @Success 201 {object} dto.ConsolidateResponse
// @Success 200 {object} apierror.Warning
// @Failure 400 {object} apierror.APIError
// @Router /v1/ledger/consolidate [post]
func (h *LedgerHandler) Consolidate(c *gin.Context) {
	var req dto.ConsolidateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Consolidate(c.Request.Context(), actorID, req)
	if err != nil {
		if w, ok := service.AsWarn(err); ok {
			c.JSON(http.StatusOK, apierror.NewWarning(w.Message))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PayExpenses godoc
// @Summary Mark expenses paid
// @Description Marks the selected expenses paid, posting one ledger entry per expense. Already-paid expenses are skipped; a selection with nothing left to pay comes back as a warning.
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PayExpensesRequest true "Expense selection"
// @Success 200 {object} dto.PayExpensesResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/expenses/pay [post]
func (h *LedgerHandler) PayExpenses(c *gin.Context) {
	var req dto.PayExpensesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.PayExpenses(c.Request.Context(), actorID, req)
	if err != nil {
		if w, ok := service.AsWarn(err); ok {
			c.JSON(http.StatusOK, apierror.NewWarning(w.Message))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FinanceSummary godoc
// @Summary Finance summary
// @Description Aggregated cash and liability figures over an optional date range. Net cash balance is always derived from the three cash figures, never stored.
// @Tags finance
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {object} dto.FinanceSummary
// @Router /v1/finance/summary [get]
func (h *LedgerHandler) FinanceSummary(c *gin.Context) {
	var filter dto.FinanceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.finance.Summary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to compute finance summary"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
