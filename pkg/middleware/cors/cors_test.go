package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.POST("/pix-webhook", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestPreflightAllowsSignatureHeader(t *testing.T) {
	r := newRouter([]string{"https://admin.igreja.org/"})
	req := httptest.NewRequest(http.MethodOptions, "/pix-webhook", nil)
	req.Header.Set("Origin", "https://admin.igreja.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.igreja.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Pix-Signature")
}

func TestUnknownOriginNotEchoed(t *testing.T) {
	r := newRouter([]string{"https://admin.igreja.org"})
	req := httptest.NewRequest(http.MethodPost, "/pix-webhook", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAllowAllWithoutCredentials(t *testing.T) {
	r := newRouter(nil)
	req := httptest.NewRequest(http.MethodPost, "/pix-webhook", nil)
	req.Header.Set("Origin", "https://anything.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Receipt-Number")
}
