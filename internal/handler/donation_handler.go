package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/response"
)

type donationService interface {
	Create(ctx context.Context, actor *authz.Actor, req models.CreateDonationRequest) (*models.Donation, error)
	Receipt(ctx context.Context, actor *authz.Actor, id string) (*models.ReceiptDocument, error)
	AnnualReport(ctx context.Context, actor *authz.Actor, personID string, year int) (*models.AnnualReportDocument, error)
}

// DonationHandler exposes donation entry, receipts and annual giving reports.
type DonationHandler struct {
	service donationService
}

// NewDonationHandler constructs a DonationHandler.
func NewDonationHandler(svc donationService) *DonationHandler {
	return &DonationHandler{service: svc}
}

// Create godoc
// @Summary Record donation
// @Description Attributes a contribution to a person
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateDonationRequest true "Donation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donations [post]
func (h *DonationHandler) Create(c *gin.Context) {
	var req models.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid donation payload"))
		return
	}
	donation, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, donation)
}

// Receipt godoc
// @Summary Donation receipt
// @Description Renders the donation receipt PDF, assigning its number on first request
// @Tags Donations
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Donation ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /donations/{id}/receipt [get]
func (h *DonationHandler) Receipt(c *gin.Context) {
	doc, err := h.service.Receipt(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.Location != "" {
		c.Header("X-Receipt-Location", doc.Location)
	}
	c.Header("X-Receipt-Number", doc.ReceiptNumber)
	response.Attachment(c, doc.Filename, "application/pdf", doc.Content)
}

// AnnualReport godoc
// @Summary Annual donation report
// @Description Renders a person's donations for one calendar year as a PDF
// @Tags Donations
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Person ID"
// @Param year query int false "Calendar year, defaults to the current year"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /people/{id}/annual-report [get]
func (h *DonationHandler) AnnualReport(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a four digit number"))
			return
		}
		year = parsed
	}

	doc, err := h.service.AnnualReport(c.Request.Context(), actorFromContext(c), c.Param("id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Report-Year", strconv.Itoa(doc.Year))
	c.Header("X-Report-Count", strconv.Itoa(doc.Count))
	c.Header("X-Report-Total", strconv.FormatInt(doc.Total, 10))
	response.Attachment(c, doc.Filename, "application/pdf", doc.Content)
}
