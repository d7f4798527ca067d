package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jo-maerz/loka/internal/domain/identity"
)

func TestKeycloakClaimsActor(t *testing.T) {
	claims := &KeycloakClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "kc-sub-1"},
		Email:            "jo@example.com",
		GivenName:        "Jo",
		FamilyName:       "Maerz",
		RealmAccess:      RealmAccess{Roles: []string{"VERIFIED", "offline_access"}},
	}

	actor := claims.Actor()
	assert.Equal(t, "kc-sub-1", actor.Subject)
	assert.Equal(t, "jo@example.com", actor.Email)
	assert.Equal(t, "Jo", actor.FirstName)
	assert.Equal(t, "Maerz", actor.LastName)
	assert.True(t, actor.HasRole(identity.RoleVerified))
	assert.False(t, actor.IsAdmin())
}

func TestKeycloakClaimsActorEmptyRoles(t *testing.T) {
	claims := &KeycloakClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "kc-sub-2"},
	}

	actor := claims.Actor()
	assert.Empty(t, actor.Roles)
	assert.False(t, actor.CanCreateExperiences())
}
