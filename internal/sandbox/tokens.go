package sandbox

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/codekarmatech/healthyphysio-sub004/internal/identity"
)

// demoSigningKey only exists so the demo tokens are well-formed JWTs; the
// sandbox never verifies them and nothing real trusts this key.
const demoSigningKey = "healthyphysio-sandbox-demo"

var demoUsers = map[identity.Role]string{
	identity.RoleAdmin:     "Asha Admin",
	identity.RoleTherapist: "Tara Therapist",
	identity.RoleDoctor:    "Dev Doctor",
	identity.RolePatient:   "Prem Patient",
}

// DemoTokens mints one HS256 bearer token per role so role-scoped flows can
// be exercised against the sandbox.
func DemoTokens() (map[identity.Role]string, error) {
	tokens := make(map[identity.Role]string, len(demoUsers))
	for role, name := range demoUsers {
		claims := jwt.MapClaims{
			"sub":  uuid.NewString(),
			"name": name,
			"role": string(role),
			"iat":  time.Now().Unix(),
		}

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(demoSigningKey))
		if err != nil {
			return nil, fmt.Errorf("sign demo token for %s: %w", role, err)
		}
		tokens[role] = token
	}
	return tokens, nil
}
