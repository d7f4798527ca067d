package persistence

import (
	"context"
	"errors"

	"github.com/jo-maerz/loka/internal/domain/identity"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.Repository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindBySubject finds a user by identity-provider subject
func (r *GormUserRepository) FindBySubject(ctx context.Context, subjectID string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "subject_id = ?", subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Save creates or updates a user. Concurrent provisioning of the same
// subject or email surfaces as shared.ErrAlreadyExists.
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ identity.Repository = (*GormUserRepository)(nil)
