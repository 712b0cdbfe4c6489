// Package identity inspects the bearer token's claims so dashboards can scope
// what they render. The client never verifies signatures; authorization is
// enforced by the API, this is display scoping only.
package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RolePatient   Role = "patient"
	RoleDoctor    Role = "doctor"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

var ErrNoToken = errors.New("no bearer token configured")

type Identity struct {
	UserID string
	Name   string
	Role   Role
}

// FromToken extracts sub/name/role claims without verifying the signature.
func FromToken(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("parse bearer token: %w", err)
	}

	id := Identity{
		UserID: stringClaim(claims, "sub"),
		Name:   stringClaim(claims, "name"),
		Role:   Role(stringClaim(claims, "role")),
	}
	if id.Role == "" {
		return Identity{}, fmt.Errorf("bearer token carries no role claim")
	}
	return id, nil
}

// IsStaff reports whether the role belongs to clinic staff rather than a patient.
func (i Identity) IsStaff() bool {
	return i.Role == RoleDoctor || i.Role == RoleTherapist || i.Role == RoleAdmin
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
