// Package role defines the fixed role hierarchy used by entity access checks.
//
// Three canonical roles form a total order:
//
//	readonly < user < admin
//
// Role strings arrive from outside the system (request bodies, stored rows,
// query parameters) and are normalized at the boundary with Parse. Any string
// that is not a canonical role maps to the lowest rank, so an unrecognized
// role can never satisfy a requirement it should not.
package role

// Role is one of the three canonical access roles.
type Role int

const (
	Readonly Role = iota
	User
	Admin
)

const (
	nameReadonly = "readonly"
	nameUser     = "user"
	nameAdmin    = "admin"
)

// Parse normalizes an externally supplied role string. Unknown strings,
// including the empty string, map to Readonly.
func Parse(s string) Role {
	switch s {
	case nameUser:
		return User
	case nameAdmin:
		return Admin
	default:
		return Readonly
	}
}

// Known reports whether s is one of the canonical role names.
func Known(s string) bool {
	switch s {
	case nameReadonly, nameUser, nameAdmin:
		return true
	}
	return false
}

// String returns the canonical name of the role.
func (r Role) String() string {
	switch r {
	case Admin:
		return nameAdmin
	case User:
		return nameUser
	default:
		return nameReadonly
	}
}

// Rank returns the position of the role in the hierarchy.
func (r Role) Rank() int { return int(r) }

// Meets reports whether a holder of r satisfies the required role.
func (r Role) Meets(required Role) bool {
	return r.Rank() >= required.Rank()
}

// MeetsRequirement compares two externally supplied role strings.
// An empty required role means mere presence of a link suffices.
func MeetsRequirement(held, required string) bool {
	if required == "" {
		return true
	}
	return Parse(held).Meets(Parse(required))
}
