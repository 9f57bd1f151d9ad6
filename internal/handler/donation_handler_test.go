package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

type stubDonationService struct {
	createReq  models.CreateDonationRequest
	created    *models.Donation
	receiptID  string
	receipt    *models.ReceiptDocument
	receiptErr error

	annualPersonID string
	annualYear     int
	annual         *models.AnnualReportDocument
	annualErr      error
}

func (s *stubDonationService) AnnualReport(_ context.Context, _ *authz.Actor, personID string, year int) (*models.AnnualReportDocument, error) {
	s.annualPersonID = personID
	s.annualYear = year
	return s.annual, s.annualErr
}

func (s *stubDonationService) Create(_ context.Context, _ *authz.Actor, req models.CreateDonationRequest) (*models.Donation, error) {
	s.createReq = req
	return s.created, nil
}

func (s *stubDonationService) Receipt(_ context.Context, _ *authz.Actor, id string) (*models.ReceiptDocument, error) {
	s.receiptID = id
	return s.receipt, s.receiptErr
}

func TestDonationHandlerCreate(t *testing.T) {
	svc := &stubDonationService{created: &models.Donation{ID: "don-1", PersonID: "p-1", Amount: 10000}}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/donations", map[string]interface{}{
		"person_id": "p-1",
		"amount":    10000,
		"method":    "PIX",
	}, treasurerClaims)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p-1", svc.createReq.PersonID)
	assert.Equal(t, models.MethodPix, svc.createReq.Method)
}

func TestDonationHandlerReceiptHeaders(t *testing.T) {
	svc := &stubDonationService{receipt: &models.ReceiptDocument{
		ReceiptNumber: "REC-2024-BC12DE",
		Filename:      "recibo_REC-2024-BC12DE.pdf",
		Content:       []byte("%PDF-1.3"),
		Location:      "receipts/2024/REC-2024-BC12DE.pdf",
	}}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/donations/don-1/receipt", nil, treasurerClaims)
	c.Params = append(c.Params, ginParam("id", "don-1"))
	h.Receipt(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "don-1", svc.receiptID)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "REC-2024-BC12DE", rec.Header().Get("X-Receipt-Number"))
	assert.Equal(t, "receipts/2024/REC-2024-BC12DE.pdf", rec.Header().Get("X-Receipt-Location"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "recibo_REC-2024-BC12DE.pdf")
}

func TestDonationHandlerReceiptWithoutArchiveOmitsLocation(t *testing.T) {
	svc := &stubDonationService{receipt: &models.ReceiptDocument{ReceiptNumber: "REC-2024-AB", Filename: "r.pdf", Content: []byte("%PDF")}}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/donations/ab/receipt", nil, treasurerClaims)
	h.Receipt(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Receipt-Location"))
}

func TestDonationHandlerReceiptForbidden(t *testing.T) {
	svc := &stubDonationService{receiptErr: appErrors.Clone(appErrors.ErrForbidden, "missing offerings:read")}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/donations/don-1/receipt", nil, memberClaims)
	h.Receipt(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDonationHandlerAnnualReport(t *testing.T) {
	svc := &stubDonationService{annual: &models.AnnualReportDocument{
		PersonID: "p-1",
		Year:     2024,
		Count:    3,
		Total:    17500,
		Filename: "relatorio_anual_2024_Maria_Souza.pdf",
		Content:  []byte("%PDF-1.3"),
	}}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/people/p-1/annual-report?year=2024", nil, treasurerClaims)
	c.Params = append(c.Params, ginParam("id", "p-1"))
	h.AnnualReport(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", svc.annualPersonID)
	assert.Equal(t, 2024, svc.annualYear)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3", rec.Header().Get("X-Report-Count"))
	assert.Equal(t, "17500", rec.Header().Get("X-Report-Total"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "relatorio_anual_2024_Maria_Souza.pdf")
}

func TestDonationHandlerAnnualReportDefaultsYear(t *testing.T) {
	svc := &stubDonationService{annual: &models.AnnualReportDocument{Year: 2024, Filename: "r.pdf", Content: []byte("%PDF")}}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/people/p-1/annual-report", nil, treasurerClaims)
	h.AnnualReport(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, svc.annualYear)
}

func TestDonationHandlerAnnualReportErrors(t *testing.T) {
	svc := &stubDonationService{}
	h := NewDonationHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/people/p-1/annual-report?year=vinte", nil, treasurerClaims)
	h.AnnualReport(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.annualPersonID)

	svc.annualErr = appErrors.Clone(appErrors.ErrNotFound, "no donations found for 2023")
	c, rec = newTestContext(http.MethodGet, "/people/p-1/annual-report?year=2023", nil, treasurerClaims)
	c.Params = append(c.Params, ginParam("id", "p-1"))
	h.AnnualReport(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
}
