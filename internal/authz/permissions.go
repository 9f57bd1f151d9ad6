package authz

import (
	"sort"
	"strings"

	"github.com/noah-isme/church-admin-api/internal/models"
)

// Permission is a capability token of the form resource:action, resource:* or *.
type Permission string

// Wildcard grants every permission.
const Wildcard Permission = "*"

const (
	PeopleRead         Permission = "people:read"
	PeopleWrite        Permission = "people:write"
	AttendanceRead     Permission = "attendance:read"
	AttendanceWrite    Permission = "attendance:write"
	OfferingsRead      Permission = "offerings:read"
	OfferingsWrite     Permission = "offerings:write"
	OfferingsDelete    Permission = "offerings:delete"
	GroupsRead         Permission = "groups:read"
	GroupsWrite        Permission = "groups:write"
	EventsRead         Permission = "events:read"
	EventsWrite        Permission = "events:write"
	CommunicationRead  Permission = "communication:read"
	CommunicationWrite Permission = "communication:write"
	ReportsRead        Permission = "reports:read"
)

// Resource returns the part before the first colon.
func (p Permission) Resource() string {
	s := string(p)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

type grantSet map[Permission]struct{}

func grants(perms ...Permission) grantSet {
	set := make(grantSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

var rolePermissions = map[models.UserRole]grantSet{
	models.RoleAdmin: grants(Wildcard),
	models.RolePastor: grants(
		PeopleRead, PeopleWrite,
		AttendanceRead, AttendanceWrite,
		OfferingsRead,
		GroupsRead, GroupsWrite,
		EventsRead, EventsWrite,
		CommunicationRead, CommunicationWrite,
		ReportsRead,
	),
	models.RoleTreasury: grants(
		PeopleRead,
		OfferingsRead, OfferingsWrite, OfferingsDelete,
		ReportsRead,
	),
	models.RoleGroupLeader: grants(
		PeopleRead,
		GroupsRead, GroupsWrite,
		AttendanceRead, AttendanceWrite,
		CommunicationRead, CommunicationWrite,
	),
	models.RoleReception: grants(
		PeopleRead, PeopleWrite,
		AttendanceRead, AttendanceWrite,
		EventsRead,
	),
	models.RoleMember: grants(PeopleRead),
}

// HasPermission reports whether role is granted p. The role's set must contain
// "*", "<resource>:*" or p itself. Unknown roles are denied.
func HasPermission(role models.UserRole, p Permission) bool {
	set, ok := rolePermissions[role]
	if !ok || p == "" {
		return false
	}
	if _, ok := set[Wildcard]; ok {
		return true
	}
	if _, ok := set[Permission(p.Resource()+":*")]; ok {
		return true
	}
	_, ok = set[p]
	return ok
}

// HasAnyPermission reports whether at least one of perms is granted.
func HasAnyPermission(role models.UserRole, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of perms is granted.
func HasAllPermissions(role models.UserRole, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// PermissionsFor returns the sorted grant tokens of role, for UI visibility checks.
func PermissionsFor(role models.UserRole) []string {
	set := rolePermissions[role]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(raw string) (models.UserRole, bool) {
	role := models.UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := rolePermissions[role]
	return role, ok
}
