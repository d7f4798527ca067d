package experience

import (
	"regexp"
	"strings"
	"time"

	"github.com/jo-maerz/loka/internal/domain/shared"
)

// Category classifies an experience for filtering
type Category string

const (
	CategoryFoodFestival     Category = "FoodFestival"
	CategoryArtInstallation  Category = "ArtInstallation"
	CategoryConcert          Category = "Concert"
	CategoryOutdoorGathering Category = "OutdoorGathering"
	CategoryFleaMarket       Category = "FleaMarket"
	CategoryExhibition       Category = "Exhibition"
	CategoryWorkshop         Category = "Workshop"
	CategoryNetworkingEvent  Category = "NetworkingEvent"
	CategoryTechTalk         Category = "TechTalk"
	CategoryOthers           Category = "Others"
)

var knownCategories = map[Category]struct{}{
	CategoryFoodFestival:     {},
	CategoryArtInstallation:  {},
	CategoryConcert:          {},
	CategoryOutdoorGathering: {},
	CategoryFleaMarket:       {},
	CategoryExhibition:       {},
	CategoryWorkshop:         {},
	CategoryNetworkingEvent:  {},
	CategoryTechTalk:         {},
	CategoryOthers:           {},
}

// ParseCategory maps raw input to a known category.
// Unrecognized values fall back to Others instead of erroring.
func ParseCategory(raw string) Category {
	c := Category(strings.TrimSpace(raw))
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryOthers
}

// IsValid reports whether the category is one of the enumerated values
func (c Category) IsValid() bool {
	_, ok := knownCategories[c]
	return ok
}

// Position is a geographic point in WGS84 coordinates
type Position struct {
	Lat float64 `gorm:"column:lat;not null" json:"lat"`
	Lng float64 `gorm:"column:lng;not null" json:"lng"`
}

// Validate checks the coordinates are on the globe
func (p Position) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return shared.NewDomainError("INVALID_POSITION", "Latitude must be between -90 and 90")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return shared.NewDomainError("INVALID_POSITION", "Longitude must be between -180 and 180")
	}
	return nil
}

// Experience is a user-submitted, location- and time-bound event record.
// It is the aggregate root for experience operations; Images and Hashtags
// are owned children and are removed together with their experience.
type Experience struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Name          string    `gorm:"type:varchar(200);not null"`
	StartDateTime time.Time `gorm:"not null;index"`
	EndDateTime   time.Time `gorm:"not null;index"`
	Address       string    `gorm:"type:varchar(500);not null"`
	Position      Position  `gorm:"embedded"`
	Description   string    `gorm:"type:text"`
	Hashtags      []Hashtag `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE"`
	Category      Category  `gorm:"type:varchar(50);not null;default:'Others';index"`
	Images        []Image   `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE"`
	CreatedBy     string    `gorm:"type:varchar(255);not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Experience) TableName() string {
	return "experiences"
}

// Hashtag is one ordered tag attached to an experience
type Hashtag struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ExperienceID int64  `gorm:"not null;index" json:"-"`
	Idx          int    `gorm:"not null" json:"-"`
	Tag          string `gorm:"type:varchar(100);not null" json:"tag"`
}

// TableName returns the table name for GORM
func (Hashtag) TableName() string {
	return "experience_hashtags"
}

// NewExperience creates a new experience owned by createdBy
func NewExperience(
	name, address, description string,
	start, end time.Time,
	position Position,
	category Category,
	hashtags []string,
	createdBy string,
) (*Experience, error) {
	e := &Experience{
		Name:          name,
		StartDateTime: start,
		EndDateTime:   end,
		Address:       address,
		Position:      position,
		Description:   description,
		Category:      category,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	e.SetHashtags(hashtags)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if createdBy == "" {
		return nil, shared.NewDomainError("MISSING_CREATOR", "Experience must record its creator")
	}
	return e, nil
}

// Validate checks the experience invariants
func (e *Experience) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Experience name cannot be empty")
	}
	if strings.TrimSpace(e.Address) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Experience address cannot be empty")
	}
	if e.StartDateTime.IsZero() || e.EndDateTime.IsZero() {
		return shared.NewDomainError("INVALID_INTERVAL", "Experience start and end times are required")
	}
	if !e.EndDateTime.After(e.StartDateTime) {
		return shared.NewDomainError("INVALID_INTERVAL", "Experience end time must be after its start time")
	}
	if !e.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown experience category")
	}
	return e.Position.Validate()
}

// Update overwrites the mutable fields and refreshes the update timestamp.
// CreatedBy is immutable after creation and is deliberately not touched.
func (e *Experience) Update(
	name, address, description string,
	start, end time.Time,
	position Position,
	category Category,
	hashtags []string,
) error {
	updated := *e
	updated.Name = name
	updated.Address = address
	updated.Description = description
	updated.StartDateTime = start
	updated.EndDateTime = end
	updated.Position = position
	updated.Category = category
	if err := updated.Validate(); err != nil {
		return err
	}

	e.Name = name
	e.Address = address
	e.Description = description
	e.StartDateTime = start
	e.EndDateTime = end
	e.Position = position
	e.Category = category
	e.SetHashtags(hashtags)
	e.UpdatedAt = time.Now()
	return nil
}

// SetHashtags replaces the tag list, preserving the given order
func (e *Experience) SetHashtags(tags []string) {
	e.Hashtags = e.Hashtags[:0]
	idx := 0
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		e.Hashtags = append(e.Hashtags, Hashtag{ExperienceID: e.ID, Idx: idx, Tag: t})
		idx++
	}
}

// HashtagList returns the tags as plain strings in stored order
func (e *Experience) HashtagList() []string {
	tags := make([]string, 0, len(e.Hashtags))
	for _, h := range e.Hashtags {
		tags = append(tags, h.Tag)
	}
	return tags
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName makes a file name safe for use as a storage key component.
// Any character outside [A-Za-z0-9._-] becomes an underscore, which keeps
// user-supplied names from injecting path separators into the key namespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	sanitized := unsafeKeyChars.ReplaceAllString(name, "_")
	if strings.Trim(sanitized, "._-") == "" {
		return "file"
	}
	return sanitized
}
