// Package keycloak talks to the Keycloak admin REST API. It is only used
// for signup: account creation is delegated to the identity provider, the
// local users table never sees a credential.
package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	identityapp "github.com/jo-maerz/loka/internal/application/identity"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"github.com/jo-maerz/loka/internal/infrastructure/config"
)

// maxResponseSize limits response bodies to prevent memory exhaustion
const maxResponseSize = 1 * 1024 * 1024 // 1MB

// Ensure AdminClient implements the identity service's Provider interface
var _ identityapp.Provider = (*AdminClient)(nil)

// AdminClient is a Keycloak admin REST client authenticating with the
// client-credentials grant of a service account
type AdminClient struct {
	baseURL      string
	realm        string
	adminRealm   string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewAdminClient creates a new admin client from configuration
func NewAdminClient(cfg *config.KeycloakConfig, logger *zap.Logger) (*AdminClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("keycloak base URL is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("keycloak client id is required")
	}

	return &AdminClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		realm:        cfg.Realm,
		adminRealm:   cfg.AdminRealm,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// adminToken returns a cached service-account token, refreshing it when
// it is about to expire
func (c *AdminClient) adminToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.baseURL, c.adminRealm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Keycloak token request rejected",
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	c.accessToken = tr.AccessToken
	// refresh a bit early so in-flight requests don't race the expiry
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 30*time.Second)
	return c.accessToken, nil
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type userRepresentation struct {
	Email         string                     `json:"email"`
	Username      string                     `json:"username"`
	FirstName     string                     `json:"firstName"`
	LastName      string                     `json:"lastName"`
	Enabled       bool                       `json:"enabled"`
	EmailVerified bool                       `json:"emailVerified"`
	Credentials   []credentialRepresentation `json:"credentials"`
}

// CreateUser registers an account in the realm and returns its subject id.
// Keycloak answers 201 with a Location header ending in the new user's id.
func (c *AdminClient) CreateUser(ctx context.Context, email, password, firstName, lastName string) (string, error) {
	token, err := c.adminToken(ctx)
	if err != nil {
		return "", err
	}

	rep := userRepresentation{
		Email:         email,
		Username:      email,
		FirstName:     firstName,
		LastName:      lastName,
		Enabled:       true,
		EmailVerified: false,
		Credentials: []credentialRepresentation{
			{Type: "password", Value: password, Temporary: false},
		},
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to encode user representation: %w", err)
	}

	usersURL := fmt.Sprintf("%s/admin/realms/%s/users", c.baseURL, c.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, usersURL, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("user creation request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	switch resp.StatusCode {
	case http.StatusCreated:
		location := resp.Header.Get("Location")
		if location == "" {
			return "", fmt.Errorf("user created but no Location header returned")
		}
		parts := strings.Split(strings.TrimRight(location, "/"), "/")
		return parts[len(parts)-1], nil
	case http.StatusConflict:
		return "", shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error("Keycloak admin credentials rejected",
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("keycloak rejected the admin credentials (status %d)", resp.StatusCode)
	default:
		return "", fmt.Errorf("user creation returned status %d", resp.StatusCode)
	}
}
