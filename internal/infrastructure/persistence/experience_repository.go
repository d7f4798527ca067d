package persistence

import (
	"context"
	"errors"

	"github.com/jo-maerz/loka/internal/domain/experience"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"gorm.io/gorm"
)

// GormExperienceRepository implements experience.Repository using GORM
type GormExperienceRepository struct {
	db *gorm.DB
}

// NewGormExperienceRepository creates a new GormExperienceRepository
func NewGormExperienceRepository(db *gorm.DB) *GormExperienceRepository {
	return &GormExperienceRepository{db: db}
}

// FindByID finds an experience with its hashtags and images
func (r *GormExperienceRepository) FindByID(ctx context.Context, id int64) (*experience.Experience, error) {
	var exp experience.Experience
	if err := r.withAssociations(r.db.WithContext(ctx)).
		First(&exp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// FindAll returns all experiences ordered by id
func (r *GormExperienceRepository) FindAll(ctx context.Context) ([]experience.Experience, error) {
	var exps []experience.Experience
	if err := r.withAssociations(r.db.WithContext(ctx)).
		Order("id ASC").
		Find(&exps).Error; err != nil {
		return nil, err
	}
	return exps, nil
}

// FindByFilters returns the experiences matching the filter, ordered by id.
// City matches the address case-insensitively as a substring. The date
// bounds select experiences whose interval overlaps the requested window,
// inclusive on both ends.
func (r *GormExperienceRepository) FindByFilters(ctx context.Context, filter experience.Filter) ([]experience.Experience, error) {
	query := r.withAssociations(r.db.WithContext(ctx))

	if filter.City != "" {
		query = query.Where("address ILIKE ?", "%"+filter.City+"%")
	}
	if filter.Start != nil {
		query = query.Where("end_date_time >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("start_date_time <= ?", *filter.End)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var exps []experience.Experience
	if err := query.Order("id ASC").Find(&exps).Error; err != nil {
		return nil, err
	}
	return exps, nil
}

// Save creates or updates an experience together with its hashtags. Existing
// hashtag rows are replaced wholesale; image rows are owned by the image
// repository and never touched here.
func (r *GormExperienceRepository) Save(ctx context.Context, exp *experience.Experience) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if exp.ID != 0 {
			if err := tx.Where("experience_id = ?", exp.ID).
				Delete(&experience.Hashtag{}).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Images").Save(exp).Error
	})
}

// Delete removes an experience; hashtag and image rows cascade at the
// database level
func (r *GormExperienceRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&experience.Experience{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormExperienceRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Hashtags", func(db *gorm.DB) *gorm.DB {
			return db.Order("idx ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

var _ experience.Repository = (*GormExperienceRepository)(nil)
