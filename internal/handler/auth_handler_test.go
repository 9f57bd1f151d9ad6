package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

type stubAuthService struct {
	loginReq models.LoginRequest
	loginRes *models.LoginResponse
	loginErr error
	meActor  *authz.Actor
}

func (s *stubAuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	s.loginReq = req
	return s.loginRes, s.loginErr
}

func (s *stubAuthService) Me(_ context.Context, actor *authz.Actor) (*models.UserInfo, error) {
	s.meActor = actor
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.UserInfo{ID: actor.UserID, Role: actor.Role, Permissions: authz.PermissionsFor(actor.Role)}, nil
}

func TestAuthHandlerLoginCapturesClient(t *testing.T) {
	svc := &stubAuthService{loginRes: &models.LoginResponse{AccessToken: "token", ExpiresIn: 86400}}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/login", map[string]string{"email": "t@igreja.org", "password": "secret"}, nil)
	c.Request.Header.Set("User-Agent", "curl/8.0")
	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t@igreja.org", svc.loginReq.Email)
	assert.Equal(t, "curl/8.0", svc.loginReq.UserAgent)
	assert.NotEmpty(t, svc.loginReq.IP)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: appErrors.ErrInvalidCredentials}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/login", map[string]string{"email": "t@igreja.org", "password": "nope"}, nil)
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rec).Error.Code)
}

func TestAuthHandlerPermissions(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/auth/permissions", nil, treasurerClaims)
	h.Permissions(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &info))
	assert.Equal(t, models.RoleTreasury, info.Role)
	assert.Contains(t, info.Permissions, string(authz.OfferingsWrite))
}
