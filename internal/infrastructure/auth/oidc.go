// Package auth validates Keycloak-issued bearer tokens. The service is a
// pure resource server: it never issues tokens, it only verifies them
// against the realm's JWKS.
package auth

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jo-maerz/loka/internal/domain/identity"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"github.com/jo-maerz/loka/internal/infrastructure/config"
)

// RealmAccess holds the realm role list from a Keycloak access token
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// KeycloakClaims are the claims this service reads from an access token
type KeycloakClaims struct {
	jwt.RegisteredClaims
	Email             string      `json:"email"`
	GivenName         string      `json:"given_name"`
	FamilyName        string      `json:"family_name"`
	PreferredUsername string      `json:"preferred_username"`
	RealmAccess       RealmAccess `json:"realm_access"`
}

// Actor maps the token claims to the caller identity passed to services
func (c *KeycloakClaims) Actor() identity.Actor {
	return identity.Actor{
		Subject:   c.Subject,
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Roles:     c.RealmAccess.Roles,
	}
}

// TokenValidator validates a raw bearer token into claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*KeycloakClaims, error)
}

// OIDCValidator validates RS256 access tokens against the realm JWKS.
// Keys are fetched once and refreshed in the background; unknown key ids
// trigger an immediate refresh so key rotation does not drop requests.
type OIDCValidator struct {
	jwks   *keyfunc.JWKS
	issuer string
}

// Ensure OIDCValidator implements TokenValidator
var _ TokenValidator = (*OIDCValidator)(nil)

// NewOIDCValidator fetches the realm JWKS and builds a validator
func NewOIDCValidator(cfg *config.OIDCConfig, logger *zap.Logger) (*OIDCValidator, error) {
	jwks, err := keyfunc.Get(cfg.JWKSURL(), keyfunc.Options{
		RefreshInterval:   cfg.JWKSRefreshIntv,
		RefreshRateLimit:  time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("JWKS refresh failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", cfg.JWKSURL(), err)
	}

	return &OIDCValidator{
		jwks:   jwks,
		issuer: cfg.Issuer(),
	}, nil
}

// ValidateToken parses and verifies an access token
func (v *OIDCValidator) ValidateToken(tokenString string) (*KeycloakClaims, error) {
	claims := &KeycloakClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil || !token.Valid {
		return nil, shared.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, shared.ErrUnauthorized
	}
	return claims, nil
}

// Close stops the background JWKS refresh
func (v *OIDCValidator) Close() {
	v.jwks.EndBackground()
}
