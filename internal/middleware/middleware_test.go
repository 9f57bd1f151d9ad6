package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	"github.com/noah-isme/church-admin-api/internal/service"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
	"github.com/noah-isme/church-admin-api/pkg/webhook"
)

type stubValidator struct {
	claims *models.JWTClaims
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	if s.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func protectedRouter(v TokenValidator, perms ...authz.Permission) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/offerings", JWT(v), RequirePermissions(perms...), func(c *gin.Context) {
		actor := ActorFromContext(c)
		c.String(http.StatusOK, actor.UserID)
	})
	return r
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := protectedRouter(&stubValidator{})
	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodGet, "/offerings", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestJWTAndPermissionGate(t *testing.T) {
	treasurer := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleTreasury}}
	r := protectedRouter(treasurer, authz.OfferingsWrite)

	req := httptest.NewRequest(http.MethodGet, "/offerings", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.Equal(t, "good", treasurer.token)

	pastor := &stubValidator{claims: &models.JWTClaims{UserID: "u2", Role: models.RolePastor}}
	r = protectedRouter(pastor, authz.OfferingsWrite)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestActorFromContextWithoutClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ActorFromContext(c))
	c.Set(ContextUserKey, "not claims")
	assert.Nil(t, ActorFromContext(c))
}

func webhookRouter(v *webhook.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/pix", WebhookSignature(v, nil), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestWebhookSignature(t *testing.T) {
	v := webhook.NewVerifier("s3cret", false)
	r := webhookRouter(v)
	body := `{"txId":"tx1","status":"PAID"}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/pix", strings.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, "sha256="+v.Sign([]byte(body)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/webhooks/pix", strings.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, v.Sign([]byte("tampered")))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")

	req = httptest.NewRequest(http.MethodPost, "/webhooks/pix", strings.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "webhook signature missing")
}

func TestWebhookSignatureWithoutSecret(t *testing.T) {
	req := func() *http.Request {
		return httptest.NewRequest(http.MethodPost, "/webhooks/pix", strings.NewReader(`{}`))
	}

	w := httptest.NewRecorder()
	webhookRouter(webhook.NewVerifier("", false)).ServeHTTP(w, req())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	webhookRouter(webhook.NewVerifier("", true)).ServeHTTP(w, req())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/wp-admin", "/.env"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",path="unmatched",status="404"} 2`)
	assert.NotContains(t, out, "wp-admin")
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		SetMeta(c, "cache_hit", true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
