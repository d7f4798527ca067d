package persistence

import (
	"context"

	"github.com/jo-maerz/loka/internal/domain/experience"
	"github.com/jo-maerz/loka/internal/domain/shared"
	"gorm.io/gorm"
)

// GormImageRepository implements experience.ImageRepository using GORM
type GormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository creates a new GormImageRepository
func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

// Save attaches an image record to its experience
func (r *GormImageRepository) Save(ctx context.Context, img *experience.Image) error {
	if err := r.db.WithContext(ctx).Save(img).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByExperience lists the images of one experience ordered by id
func (r *GormImageRepository) FindByExperience(ctx context.Context, experienceID int64) ([]experience.Image, error) {
	var images []experience.Image
	if err := r.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		Order("id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

var _ experience.ImageRepository = (*GormImageRepository)(nil)
