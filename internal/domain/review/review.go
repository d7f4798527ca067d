package review

import (
	"strings"
	"time"

	"github.com/jo-maerz/loka/internal/domain/shared"
)

// MaxTextLength bounds the review body
const MaxTextLength = 1000

// Review is one user's rating of an experience. At most one review may
// exist per (user, experience) pair; the unique index is the authoritative
// guard, service-level pre-checks only fail fast.
type Review struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Stars        int       `gorm:"not null"`
	Text         string    `gorm:"type:varchar(1000);not null"`
	UserID       int64     `gorm:"not null;uniqueIndex:idx_reviews_user_experience,priority:1"`
	ExperienceID int64     `gorm:"not null;uniqueIndex:idx_reviews_user_experience,priority:2;index"`
	CreatedBy    string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a review by userID/createdBy for an experience
func NewReview(userID, experienceID int64, stars int, text, createdBy string) (*Review, error) {
	r := &Review{
		Stars:        stars,
		Text:         text,
		UserID:       userID,
		ExperienceID: experienceID,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if userID <= 0 || experienceID <= 0 {
		return nil, shared.NewDomainError("MISSING_REFERENCE", "Review must reference a user and an experience")
	}
	if createdBy == "" {
		return nil, shared.NewDomainError("MISSING_CREATOR", "Review must record its author")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the review invariants
func (r *Review) Validate() error {
	if r.Stars < 1 || r.Stars > 5 {
		return shared.NewDomainError("INVALID_STARS", "Stars must be between 1 and 5")
	}
	if strings.TrimSpace(r.Text) == "" {
		return shared.NewDomainError("INVALID_TEXT", "Review text cannot be blank")
	}
	if len(r.Text) > MaxTextLength {
		return shared.NewDomainError("INVALID_TEXT", "Review text cannot exceed 1000 characters")
	}
	return nil
}

// Update overwrites stars and text and refreshes the update timestamp
func (r *Review) Update(stars int, text string) error {
	updated := *r
	updated.Stars = stars
	updated.Text = text
	if err := updated.Validate(); err != nil {
		return err
	}

	r.Stars = stars
	r.Text = text
	r.UpdatedAt = time.Now()
	return nil
}
