package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/internal/service"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/webhook"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type routerFixture struct {
	engine    *gin.Engine
	verifier  *webhook.Verifier
	pix       *stubPixService
	applier   *stubWebhookApplier
	donations *stubDonationService
	dbErr     error
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &routerFixture{
		verifier: webhook.NewVerifier("whsec_test", false),
		pix:      &stubPixService{listRes: &models.PixPaymentList{}},
		donations: &stubDonationService{annual: &models.AnnualReportDocument{
			PersonID: "p-1",
			Year:     2024,
			Filename: "relatorio_anual_2024_Maria.pdf",
			Content:  []byte("%PDF"),
		}},
		applier: &stubWebhookApplier{transition: &models.PixTransition{
			OfferingID: "off-1",
			NewStatus:  models.PixStatusPaid,
			Applied:    true,
		}},
	}
	f.engine = NewRouter(RouterConfig{
		APIPrefix: "/api/v1/",
		Tokens: tokenTable{
			"treasurer": treasurerClaims,
			"member":    memberClaims,
		},
		Verifier: f.verifier,
		Metrics:  service.NewMetricsService(),
	}, Handlers{
		Auth:      NewAuthHandler(&stubAuthService{}),
		Pix:       NewPixHandler(f.pix, &stubReconcileService{report: &models.ReconciliationReport{}}),
		Webhook:   NewWebhookHandler(f.applier, false, nil),
		Offerings: NewOfferingHandler(&stubOfferingService{list: &models.OfferingList{}}),
		Donations: NewDonationHandler(f.donations),
		System: NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
			"database": func(context.Context) error { return f.dbErr },
		}),
	})
	return f
}

func (f *routerFixture) do(method, path, token string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func TestRouterRequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/offerings/pix", "", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/offerings/pix", "forged", nil, nil).Code)
}

func TestRouterEnforcesPermissions(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/offerings/pix", "member", []byte(`{"amount":1000,"description":"x"}`), map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, f.pix.chargeActor)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/offerings/pix", "member", nil, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/offerings/pix", "treasurer", nil, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/auth/permissions", "member", nil, nil).Code)
}

func TestRouterAnnualReportRequiresRead(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/people/p-1/annual-report?year=2024", "member", nil, nil).Code)
	assert.Empty(t, f.donations.annualPersonID)

	rec := f.do(http.MethodGet, "/api/v1/people/p-1/annual-report?year=2024", "treasurer", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", f.donations.annualPersonID)
	assert.Equal(t, 2024, f.donations.annualYear)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestRouterExportRouteIsNotShadowedByID(t *testing.T) {
	f := newRouterFixture(t)
	offerings := &stubOfferingService{file: &service.ExportFile{Filename: "ofertas.csv", ContentType: "text/csv", Content: []byte("x")}}
	f.engine = NewRouter(RouterConfig{
		APIPrefix: "/api/v1",
		Tokens:    tokenTable{"treasurer": treasurerClaims},
		Verifier:  f.verifier,
	}, Handlers{
		Auth:      NewAuthHandler(&stubAuthService{}),
		Pix:       NewPixHandler(f.pix, &stubReconcileService{}),
		Webhook:   NewWebhookHandler(f.applier, false, nil),
		Offerings: NewOfferingHandler(offerings),
		Donations: NewDonationHandler(&stubDonationService{}),
		System:    NewMetricsHandler(nil, nil),
	})

	rec := f.do(http.MethodGet, "/api/v1/offerings/export?format=csv", "treasurer", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", offerings.exportFormat)
	assert.Empty(t, offerings.getID)
}

func TestRouterWebhookSignature(t *testing.T) {
	f := newRouterFixture(t)
	body := []byte(`{"txId":"tx1","status":"PAID"}`)

	rec := f.do(http.MethodPost, "/api/v1/pix-webhook", "", body, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.applier.calls)

	rec = f.do(http.MethodPost, "/api/v1/pix-webhook", "", body, map[string]string{
		"Content-Type":          "application/json",
		webhook.SignatureHeader: f.verifier.Sign(body),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.applier.calls)
	assert.Equal(t, "tx1", f.applier.event.TxID)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/pix-webhook", "", nil, nil).Code)
}

func TestRouterSystemEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", nil, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "", nil, nil).Code)

	f.dbErr = errors.New("connection refused")
	rec := f.do(http.MethodGet, "/ready", "", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = f.do(http.MethodGet, "/metrics", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandlerWithoutRegistry(t *testing.T) {
	h := NewMetricsHandler(nil, nil)
	c, rec := newTestContext(http.MethodGet, "/metrics", nil, nil)
	h.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
