package authz

import (
	"fmt"
	"strings"

	"github.com/noah-isme/church-admin-api/internal/models"
	appErrors "github.com/noah-isme/church-admin-api/pkg/errors"
)

// Actor is an already authenticated caller with a resolved role.
type Actor struct {
	UserID string
	Email  string
	Role   models.UserRole
}

// ActorFromClaims builds an actor out of validated token claims.
func ActorFromClaims(claims *models.JWTClaims) *Actor {
	if claims == nil {
		return nil
	}
	return &Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

// Check returns nil when actor holds any of required. An empty requirement
// admits every authenticated actor.
func Check(actor *Actor, required ...Permission) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if len(required) == 0 || HasAnyPermission(actor.Role, required...) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s lacks %s", actor.Role, joinPermissions(required)))
}

// Gate runs op only if actor passes Check. op is never invoked on denial and
// its result is returned unchanged otherwise.
func Gate[T any](actor *Actor, required []Permission, op func() (T, error)) (T, error) {
	if err := Check(actor, required...); err != nil {
		var zero T
		return zero, err
	}
	return op()
}

func joinPermissions(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, " or ")
}
