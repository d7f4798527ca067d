package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jo-maerz/loka/internal/domain/identity"
	"github.com/jo-maerz/loka/internal/domain/shared"
)

// SignupInput carries the fields for a new account
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserResponse is the user shape returned to clients
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Provider creates accounts at the external identity provider.
// Credentials never touch the local store.
type Provider interface {
	// CreateUser registers the account and returns its subject id
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (string, error)
}

// Service handles local user provisioning and signup
type Service struct {
	repo     identity.Repository
	provider Provider
}

// NewService creates a new identity service
func NewService(repo identity.Repository, provider Provider) *Service {
	return &Service{repo: repo, provider: provider}
}

// Signup registers a new account with the identity provider and mirrors it
// locally. A taken email is a conflict.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*UserResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	subjectID, err := s.provider.CreateUser(ctx, input.Email, input.Password, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(subjectID, input.Email, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// EnsureUser returns the local row for an authenticated actor, creating it
// from the token claims on first contact and refreshing stale claim fields
func (s *Service) EnsureUser(ctx context.Context, actor identity.Actor) (*identity.User, error) {
	user, err := s.repo.FindBySubject(ctx, actor.Subject)
	if err == nil {
		if s.refreshClaims(user, actor) {
			if err := s.repo.Save(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = identity.NewUser(actor.Subject, actor.Email, actor.FirstName, actor.LastName)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) refreshClaims(user *identity.User, actor identity.Actor) bool {
	changed := false
	if actor.Email != "" && actor.Email != user.Email {
		user.Email = actor.Email
		changed = true
	}
	if actor.FirstName != "" && actor.FirstName != user.FirstName {
		user.FirstName = actor.FirstName
		changed = true
	}
	if actor.LastName != "" && actor.LastName != user.LastName {
		user.LastName = actor.LastName
		changed = true
	}
	if changed {
		user.UpdatedAt = time.Now()
	}
	return changed
}
