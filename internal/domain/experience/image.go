package experience

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jo-maerz/loka/internal/domain/shared"
)

// Image is one file attached to an experience. Only a reference to the
// object store is persisted; the bytes live in the bucket under StorageKey.
type Image struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExperienceID int64     `gorm:"not null;index" json:"-"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"fileName"`
	StorageKey   string    `gorm:"type:varchar(512);not null;uniqueIndex" json:"-"`
	ContentType  string    `gorm:"type:varchar(100);not null" json:"contentType"`
	CreatedAt    time.Time `gorm:"not null" json:"-"`
}

// TableName returns the table name for GORM
func (Image) TableName() string {
	return "images"
}

// NewImage creates an image record for a stored object
func NewImage(experienceID int64, fileName, contentType string) (*Image, error) {
	if experienceID <= 0 {
		return nil, shared.NewDomainError("MISSING_EXPERIENCE", "Image must belong to a persisted experience")
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "Image file name cannot be empty")
	}
	sanitized := SanitizeFileName(fileName)
	return &Image{
		ExperienceID: experienceID,
		FileName:     sanitized,
		StorageKey:   StorageKeyFor(experienceID, sanitized),
		ContentType:  contentType,
		CreatedAt:    time.Now(),
	}, nil
}

// StorageKeyFor builds a fresh object key for a file attached to an
// experience. The uuid segment keeps same-named uploads from overwriting
// each other in the bucket. The caller must pass an already sanitized
// file name.
func StorageKeyFor(experienceID int64, sanitizedName string) string {
	return fmt.Sprintf("experiences/%d/%s-%s", experienceID, uuid.NewString(), sanitizedName)
}

// StoragePrefixFor is the key prefix holding every object of one experience
func StoragePrefixFor(experienceID int64) string {
	return fmt.Sprintf("experiences/%d/", experienceID)
}
