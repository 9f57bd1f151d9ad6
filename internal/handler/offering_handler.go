package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/middleware"
	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/internal/service"
	"github.com/noah-isme/church-admin-api/pkg/response"
)

type offeringService interface {
	Create(ctx context.Context, actor *authz.Actor, req models.CreateOfferingRequest) (*models.Offering, error)
	Get(ctx context.Context, actor *authz.Actor, id string) (*models.Offering, error)
	List(ctx context.Context, actor *authz.Actor, filter models.OfferingFilter) (*models.OfferingList, error)
	Export(ctx context.Context, actor *authz.Actor, filter models.OfferingFilter, format string) (*service.ExportFile, error)
}

// OfferingHandler exposes offering entry, listing and export endpoints.
type OfferingHandler struct {
	service offeringService
}

// NewOfferingHandler constructs an OfferingHandler.
func NewOfferingHandler(svc offeringService) *OfferingHandler {
	return &OfferingHandler{service: svc}
}

// Create godoc
// @Summary Record offering
// @Description Records a non-PIX offering (cash, card, transfer, check)
// @Tags Offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /offerings [post]
func (h *OfferingHandler) Create(c *gin.Context) {
	var req models.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid offering payload"))
		return
	}
	offering, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

// Get godoc
// @Summary Get offering
// @Tags Offerings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /offerings/{id} [get]
func (h *OfferingHandler) Get(c *gin.Context) {
	offering, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// List godoc
// @Summary List offerings
// @Description Filtered, paginated offerings with the total amount across the filter
// @Tags Offerings
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search in description, notes and PIX id"
// @Param origin query string false "CULTO, CAMPANHA, OFERTA or OUTRO"
// @Param method query string false "CASH, CARD, PIX, TRANSFER or CHECK"
// @Param serviceId query string false "Service"
// @Param campusId query string false "Campus"
// @Param pixStatus query string false "PIX status"
// @Param dateFrom query string false "Start date"
// @Param dateTo query string false "End date"
// @Param amountMin query int false "Minimum amount in centavos"
// @Param amountMax query int false "Maximum amount in centavos"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "date, amount, origin, method or createdAt"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	filter, err := offeringFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	list, err := h.service.List(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := list.Pagination
	response.JSON(c, http.StatusOK, list, &pagination, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export offerings
// @Description Downloads every offering matching the filter as CSV or PDF
// @Tags Offerings
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /offerings/export [get]
func (h *OfferingHandler) Export(c *gin.Context) {
	filter, err := offeringFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), actorFromContext(c), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

func offeringFilterFromQuery(c *gin.Context) (models.OfferingFilter, error) {
	filter := models.OfferingFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		ServiceID: queryString(c, "serviceId"),
		CampusID:  queryString(c, "campusId"),
	}
	if origin := queryUpper(c, "origin"); origin != nil {
		o := models.OfferingOrigin(*origin)
		filter.Origin = &o
	}
	if method := queryUpper(c, "method"); method != nil {
		m := models.PaymentMethod(*method)
		filter.Method = &m
	}
	if status := queryUpper(c, "pixStatus"); status != nil {
		s := models.PixStatus(*status)
		filter.PixStatus = &s
	}

	var err error
	if filter.DateFrom, err = queryTime(c, "dateFrom", false); err != nil {
		return filter, err
	}
	if filter.DateTo, err = queryTime(c, "dateTo", true); err != nil {
		return filter, err
	}
	if filter.AmountMin, err = queryInt64(c, "amountMin"); err != nil {
		return filter, err
	}
	if filter.AmountMax, err = queryInt64(c, "amountMax"); err != nil {
		return filter, err
	}
	return filter, nil
}
