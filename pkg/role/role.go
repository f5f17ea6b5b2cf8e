// Package role defines the closed set of account roles shared by the clinic
// backend, the client SDK and the portal.
package role

import (
	"errors"
	"strings"
)

type Role string

const (
	Tutor        Role = "tutor"
	Veterinarian Role = "veterinarian"
	Admin        Role = "admin"
)

// ErrUnknown is returned by Parse for any value outside the enumeration.
var ErrUnknown = errors.New("role: unknown role")

// All lists every valid role in a stable order.
func All() []Role { return []Role{Tutor, Veterinarian, Admin} }

// Parse converts s into a Role. Matching ignores case and surrounding space
// but does not accept aliases such as "vet".
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknown
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case Tutor, Veterinarian, Admin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// OneOf reports whether r matches any of the given roles.
func (r Role) OneOf(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
