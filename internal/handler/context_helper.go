package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/middleware"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

const dateLayout = "2006-01-02"

func actorFromContext(c *gin.Context) *authz.Actor {
	return middleware.ActorFromContext(c)
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

// queryTime accepts RFC3339 or a bare date. A bare date used as an upper bound
// covers the whole day.
func queryTime(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func queryInt64(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer amount in centavos")
	}
	return &v, nil
}

func queryString(c *gin.Context, key string) *string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryUpper(c *gin.Context, key string) *string {
	v := queryString(c, key)
	if v == nil {
		return nil
	}
	upper := strings.ToUpper(*v)
	return &upper
}
