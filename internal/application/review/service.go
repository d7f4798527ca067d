package review

import (
	"context"
	"errors"
	"time"

	"github.com/jo-maerz/loka/internal/domain/experience"
	"github.com/jo-maerz/loka/internal/domain/identity"
	"github.com/jo-maerz/loka/internal/domain/review"
	"github.com/jo-maerz/loka/internal/domain/shared"
)

// Input carries the review fields accepted from the API boundary
type Input struct {
	Stars int
	Text  string
}

// Response is the review shape returned to clients, including the
// reviewer's display fields for the experience detail view
type Response struct {
	ID           int64  `json:"id"`
	Stars        int    `json:"stars"`
	Text         string `json:"text"`
	ExperienceID int64  `json:"experienceId"`
	CreatedBy    string `json:"createdBy"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Email        string `json:"email,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// UserProvisioner resolves the local user row for an authenticated actor,
// creating it from the token claims when missing
type UserProvisioner interface {
	EnsureUser(ctx context.Context, actor identity.Actor) (*identity.User, error)
}

// Service handles review operations
type Service struct {
	repo           review.Repository
	experienceRepo experience.Repository
	users          UserProvisioner
}

// NewService creates a new review service
func NewService(repo review.Repository, experienceRepo experience.Repository, users UserProvisioner) *Service {
	return &Service{
		repo:           repo,
		experienceRepo: experienceRepo,
		users:          users,
	}
}

// Create stores a new review by the actor for an experience. The
// experience must exist, creators cannot review their own experience, and
// a second review by the same user is rejected. The duplicate pre-check
// only fails fast; the unique constraint on (user_id, experience_id) is
// the authoritative guard, and losing that race surfaces as a conflict.
func (s *Service) Create(ctx context.Context, experienceID int64, input Input, actor identity.Actor) (*Response, error) {
	exp, err := s.experienceRepo.FindByID(ctx, experienceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Experience does not exist")
		}
		return nil, err
	}
	if exp.CreatedBy == actor.Subject {
		return nil, shared.NewDomainError("SELF_REVIEW", "Creators cannot review their own experience")
	}

	user, err := s.users.EnsureUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUserAndExperience(ctx, user.ID, experienceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this experience")
	}

	r, err := review.NewReview(user.ID, experienceID, input.Stars, input.Text, actor.Subject)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	resp := toResponse(r, user.FirstName, user.LastName, user.Email)
	return &resp, nil
}

// GetByExperience lists the reviews of an experience with reviewer info
func (s *Service) GetByExperience(ctx context.Context, experienceID int64) ([]Response, error) {
	if _, err := s.experienceRepo.FindByID(ctx, experienceID); err != nil {
		return nil, err
	}

	rows, err := s.repo.FindByExperience(ctx, experienceID)
	if err != nil {
		return nil, err
	}

	responses := make([]Response, 0, len(rows))
	for i := range rows {
		responses = append(responses, toResponse(&rows[i].Review, rows[i].FirstName, rows[i].LastName, rows[i].Email))
	}
	return responses, nil
}

// Update overwrites stars and text; only the author or an admin may do so
func (s *Service) Update(ctx context.Context, id int64, input Input, actor identity.Actor) (*Response, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.IsOwnerOrAdmin(r.CreatedBy, actor) {
		return nil, shared.ErrForbidden
	}

	if err := r.Update(input.Stars, input.Text); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	resp := toResponse(r, "", "", "")
	return &resp, nil
}

// Delete hard-deletes a review; only the author or an admin may do so
func (s *Service) Delete(ctx context.Context, id int64, actor identity.Actor) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !identity.IsOwnerOrAdmin(r.CreatedBy, actor) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func toResponse(r *review.Review, firstName, lastName, email string) Response {
	return Response{
		ID:           r.ID,
		Stars:        r.Stars,
		Text:         r.Text,
		ExperienceID: r.ExperienceID,
		CreatedBy:    r.CreatedBy,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
