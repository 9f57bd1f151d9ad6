package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

func TestGateDeniesWithoutInvokingOperation(t *testing.T) {
	calls := 0
	op := func() (string, error) {
		calls++
		return "done", nil
	}

	_, err := Gate(&Actor{UserID: "u1", Role: models.RoleMember}, []Permission{OfferingsWrite}, op)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, calls)
}

func TestGateAnyOfSemantics(t *testing.T) {
	res, err := Gate(&Actor{Role: models.RolePastor}, []Permission{OfferingsWrite, OfferingsRead}, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, res)
}

func TestGatePassesResultAndErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	res, err := Gate(&Actor{Role: models.RoleTreasury}, []Permission{OfferingsWrite}, func() (string, error) {
		return "partial", boom
	})
	assert.Equal(t, "partial", res)
	assert.ErrorIs(t, err, boom)
}

func TestGateRequiresActor(t *testing.T) {
	called := false
	_, err := Gate[struct{}](nil, nil, func() (struct{}, error) {
		called = true
		return struct{}{}, nil
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	assert.False(t, called)
}

func TestCheckEmptyRequirementAdmitsAuthenticated(t *testing.T) {
	assert.NoError(t, Check(&Actor{Role: models.RoleMember}))
	assert.NoError(t, Check(&Actor{Role: models.UserRole("GUEST")}))
}

func TestActorFromClaims(t *testing.T) {
	assert.Nil(t, ActorFromClaims(nil))
	actor := ActorFromClaims(&models.JWTClaims{UserID: "u1", Email: "t@igreja.org", Role: models.RoleTreasury})
	assert.Equal(t, &Actor{UserID: "u1", Email: "t@igreja.org", Role: models.RoleTreasury}, actor)
}
