package policy

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RolePodcaster Role = "Podcaster"
	RoleListener  Role = "Listener"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RolePodcaster, RoleListener}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePodcaster, RoleListener:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts any casing of a role name.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Principal is the caller a decision is made for. The zero value is anonymous.
type Principal struct {
	ID   string
	Role Role
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// Authenticated reports whether the principal carries an identity and a valid role.
func (p Principal) Authenticated() bool {
	return p.ID != "" && p.Role.Valid()
}

func (p Principal) IsAdmin() bool     { return p.Authenticated() && p.Role == RoleAdmin }
func (p Principal) IsPodcaster() bool { return p.Authenticated() && p.Role == RolePodcaster }
