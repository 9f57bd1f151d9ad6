package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/middleware"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/response"
)

const maxReconcileAgeDays = 90

type pixService interface {
	CreateCharge(ctx context.Context, actor *authz.Actor, req models.CreatePixChargeRequest) (*models.PixChargeResult, error)
	ListPixPayments(ctx context.Context, actor *authz.Actor, filter models.PixFilter) (*models.PixPaymentList, error)
}

type reconciliationService interface {
	Run(ctx context.Context, actor *authz.Actor, maxAgeDays int) (*models.ReconciliationReport, error)
	History(ctx context.Context, actor *authz.Actor, filter models.ReconciliationHistoryFilter) (*models.ReconciliationHistory, error)
}

// PixHandler exposes PIX charge, listing and reconciliation endpoints.
type PixHandler struct {
	pix       pixService
	reconcile reconciliationService
}

// NewPixHandler constructs a PixHandler.
func NewPixHandler(pix pixService, reconcile reconciliationService) *PixHandler {
	return &PixHandler{pix: pix, reconcile: reconcile}
}

// CreateCharge godoc
// @Summary Create PIX charge
// @Description Issues a PIX charge at the provider and records a PENDING offering
// @Tags PIX
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreatePixChargeRequest true "Charge payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /offerings/pix [post]
func (h *PixHandler) CreateCharge(c *gin.Context) {
	var req models.CreatePixChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid pix charge payload"))
		return
	}

	res, err := h.pix.CreateCharge(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// List godoc
// @Summary List PIX payments
// @Description Lists PIX offerings newest first with per-status counts
// @Tags PIX
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, PAID, EXPIRED or CANCELLED"
// @Param dateFrom query string false "Start date"
// @Param dateTo query string false "End date"
// @Success 200 {object} response.Envelope
// @Router /offerings/pix [get]
func (h *PixHandler) List(c *gin.Context) {
	var filter models.PixFilter
	if status := queryUpper(c, "status"); status != nil {
		s := models.PixStatus(*status)
		filter.Status = &s
	}
	var err error
	if filter.DateFrom, err = queryTime(c, "dateFrom", false); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateTo, err = queryTime(c, "dateTo", true); err != nil {
		response.Error(c, err)
		return
	}

	list, err := h.pix.ListPixPayments(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil, middleware.ExtractMeta(c))
}

// Reconcile godoc
// @Summary Run PIX reconciliation
// @Description Polls the provider for every PENDING charge within the age window
// @Tags PIX
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ReconcileRequest false "Reconcile options"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /offerings/reconcile [post]
func (h *PixHandler) Reconcile(c *gin.Context) {
	var req models.ReconcileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err, "invalid reconcile payload"))
			return
		}
	}
	if req.MaxAgeDays < 0 || req.MaxAgeDays > maxReconcileAgeDays {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("max_age_days must be between 0 and %d", maxReconcileAgeDays)))
		return
	}

	report, err := h.reconcile.Run(c.Request.Context(), actorFromContext(c), req.MaxAgeDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// History godoc
// @Summary PIX reconciliation history
// @Description Lists the latest PIX status changes from the audit trail
// @Tags PIX
// @Produce json
// @Security BearerAuth
// @Param dateFrom query string false "Start date"
// @Param dateTo query string false "End date"
// @Success 200 {object} response.Envelope
// @Router /offerings/reconcile [get]
func (h *PixHandler) History(c *gin.Context) {
	var filter models.ReconciliationHistoryFilter
	var err error
	if filter.DateFrom, err = queryTime(c, "dateFrom", false); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateTo, err = queryTime(c, "dateTo", true); err != nil {
		response.Error(c, err)
		return
	}

	history, err := h.reconcile.History(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}
