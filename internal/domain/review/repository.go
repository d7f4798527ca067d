package review

import "context"

// WithReviewer pairs a review with the display fields of its author
type WithReviewer struct {
	Review
	FirstName string
	LastName  string
	Email     string
}

// Repository defines the interface for review persistence
type Repository interface {
	// FindByID finds a review by its ID
	FindByID(ctx context.Context, id int64) (*Review, error)

	// FindByExperience lists all reviews of an experience with the
	// reviewers' display info, ordered by id
	FindByExperience(ctx context.Context, experienceID int64) ([]WithReviewer, error)

	// ExistsByUserAndExperience reports whether the user already reviewed
	// the experience
	ExistsByUserAndExperience(ctx context.Context, userID, experienceID int64) (bool, error)

	// Save creates or updates a review. A concurrent duplicate insert
	// surfaces as shared.ErrAlreadyExists, translated from the unique
	// constraint on (user_id, experience_id).
	Save(ctx context.Context, r *Review) error

	// Delete hard-deletes a review
	Delete(ctx context.Context, id int64) error
}
