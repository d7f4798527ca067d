package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jo-maerz/loka/internal/domain/review"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by its ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id int64) (*review.Review, error) {
	var rev review.Review
	if err := r.db.WithContext(ctx).First(&rev, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// reviewerRow is the flat projection scanned from the reviews/users join
type reviewerRow struct {
	review.Review
	FirstName string
	LastName  string
	Email     string
}

// FindByExperience lists the reviews of an experience together with the
// reviewers' display info, ordered by id
func (r *GormReviewRepository) FindByExperience(ctx context.Context, experienceID int64) ([]review.WithReviewer, error) {
	var rows []reviewerRow
	if err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, users.first_name, users.last_name, users.email").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.experience_id = ?", experienceID).
		Order("reviews.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	reviews := make([]review.WithReviewer, len(rows))
	for i, row := range rows {
		reviews[i] = review.WithReviewer{
			Review:    row.Review,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
		}
	}
	return reviews, nil
}

// ExistsByUserAndExperience reports whether the user already reviewed the
// experience
func (r *GormReviewRepository) ExistsByUserAndExperience(ctx context.Context, userID, experienceID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&review.Review{}).
		Where("user_id = ? AND experience_id = ?", userID, experienceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a review. A duplicate insert losing the race
// against the unique constraint on (user_id, experience_id) comes back as
// shared.ErrAlreadyExists.
func (r *GormReviewRepository) Save(ctx context.Context, rev *review.Review) error {
	if err := r.db.WithContext(ctx).Save(rev).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete hard-deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&review.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// isUniqueViolation detects a PostgreSQL unique constraint violation
// (SQLSTATE 23505) without depending on the driver's error type
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

var _ review.Repository = (*GormReviewRepository)(nil)
