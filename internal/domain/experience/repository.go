package experience

import (
	"context"
	"time"
)

// Filter narrows an experience search. Zero-valued fields apply no filter.
// The date bounds select experiences whose [start, end] interval overlaps
// the requested window, inclusive on both ends; a single bound filters on
// that bound alone.
type Filter struct {
	City     string
	Start    *time.Time
	End      *time.Time
	Category Category
}

// Repository defines the interface for experience persistence
type Repository interface {
	// FindByID finds an experience with its images and hashtags
	FindByID(ctx context.Context, id int64) (*Experience, error)

	// FindAll returns all experiences ordered by id
	FindAll(ctx context.Context) ([]Experience, error)

	// FindByFilters returns the experiences matching the filter, ordered by id
	FindByFilters(ctx context.Context, filter Filter) ([]Experience, error)

	// Save creates or updates an experience together with its hashtags
	Save(ctx context.Context, exp *Experience) error

	// Delete removes an experience; images and hashtags go with it
	Delete(ctx context.Context, id int64) error
}

// ImageRepository defines the interface for image persistence
type ImageRepository interface {
	// Save attaches an image record to its experience
	Save(ctx context.Context, img *Image) error

	// FindByExperience lists the images of one experience ordered by id
	FindByExperience(ctx context.Context, experienceID int64) ([]Image, error)
}
