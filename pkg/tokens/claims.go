package tokens

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AccessClaims struct {
	Email    string   `json:"email"`
	FullName string   `json:"name"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller handed to services.
type Identity struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Roles    []string
}

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

func (i Identity) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if i.HasRole(r) {
			return true
		}
	}
	return false
}

func (c *AccessClaims) Identity() (Identity, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		ID:       id,
		Email:    c.Email,
		FullName: c.FullName,
		Roles:    slices.Clone(c.Roles),
	}, nil
}
