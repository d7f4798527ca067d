package experience

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jo-maerz/loka/internal/domain/experience"
	"github.com/jo-maerz/loka/internal/domain/identity"
	"github.com/jo-maerz/loka/internal/domain/shared"
)

// AllowedImageContentTypes whitelists upload content types.
// SVG is excluded on purpose: it can carry scripts.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// ObjectStorage defines the storage operations the service needs.
// Implemented by the infrastructure layer (S3/MinIO).
type ObjectStorage interface {
	// Upload stores an object under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// DeletePrefix removes every object under the given key prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// GenerateDownloadURL generates a presigned URL for downloading an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ServiceConfig holds configuration for the experience service
type ServiceConfig struct {
	// DownloadURLExpiry is the duration for which image download URLs are valid
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// Service handles experience operations
type Service struct {
	repo      experience.Repository
	imageRepo experience.ImageRepository
	storage   ObjectStorage
	logger    *zap.Logger
	config    ServiceConfig
}

// NewService creates a new experience service
func NewService(
	repo experience.Repository,
	imageRepo experience.ImageRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		imageRepo: imageRepo,
		storage:   storage,
		logger:    logger,
		config:    DefaultServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *Service) SetConfig(config ServiceConfig) {
	s.config = config
}

// Create persists a new experience owned by the actor and uploads its
// images. The row is saved first so the id exists for the storage keys.
// A failed upload surfaces immediately; images uploaded before the failure
// stay attached, there is no rollback of already stored objects.
func (s *Service) Create(ctx context.Context, input Input, files []UploadFile, actor identity.Actor) (*Response, error) {
	if !actor.CanCreateExperiences() {
		return nil, shared.ErrForbidden
	}

	exp, err := experience.NewExperience(
		input.Name, input.Address, input.Description,
		input.StartDateTime, input.EndDateTime,
		input.Position,
		experience.ParseCategory(input.Category),
		input.Hashtags,
		actor.Subject,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, exp); err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, exp.ID, files); err != nil {
		return nil, err
	}

	return s.findResponse(ctx, exp.ID)
}

// Update overwrites the mutable fields and appends any newly uploaded
// images. Existing images are never removed here.
func (s *Service) Update(ctx context.Context, id int64, input Input, files []UploadFile, actor identity.Actor) (*Response, error) {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.IsOwnerOrAdmin(exp.CreatedBy, actor) {
		return nil, shared.ErrForbidden
	}

	err = exp.Update(
		input.Name, input.Address, input.Description,
		input.StartDateTime, input.EndDateTime,
		input.Position,
		experience.ParseCategory(input.Category),
		input.Hashtags,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, exp); err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, exp.ID, files); err != nil {
		return nil, err
	}

	return s.findResponse(ctx, exp.ID)
}

// Delete removes an experience, its image rows (FK cascade) and the
// stored objects under the experience's key prefix
func (s *Service) Delete(ctx context.Context, id int64, actor identity.Actor) error {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !identity.IsOwnerOrAdmin(exp.CreatedBy, actor) {
		return shared.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.storage.DeletePrefix(ctx, experience.StoragePrefixFor(id)); err != nil {
		s.logger.Warn("failed to delete stored objects for experience",
			zap.Int64("experience_id", id),
			zap.Error(err))
		return shared.NewDomainError("STORAGE_CLEANUP_FAILED", "Experience deleted but stored images could not be removed")
	}
	return nil
}

// FindByID returns one experience
func (s *Service) FindByID(ctx context.Context, id int64) (*Response, error) {
	return s.findResponse(ctx, id)
}

// FindAll returns every experience ordered by id
func (s *Service) FindAll(ctx context.Context) ([]Response, error) {
	exps, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, exps), nil
}

// Search returns the experiences matching the filter
func (s *Service) Search(ctx context.Context, filter experience.Filter) ([]Response, error) {
	exps, err := s.repo.FindByFilters(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, exps), nil
}

func (s *Service) attachImages(ctx context.Context, experienceID int64, files []UploadFile) error {
	for _, f := range files {
		if !AllowedImageContentTypes[f.ContentType] {
			return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type not allowed for images")
		}

		img, err := experience.NewImage(experienceID, f.FileName, f.ContentType)
		if err != nil {
			return err
		}
		if err := s.storage.Upload(ctx, img.StorageKey, f.Data, f.ContentType); err != nil {
			s.logger.Error("image upload failed",
				zap.Int64("experience_id", experienceID),
				zap.String("storage_key", img.StorageKey),
				zap.Error(err))
			return shared.NewDomainError("UPLOAD_FAILED", "Failed to upload image")
		}
		if err := s.imageRepo.Save(ctx, img); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) findResponse(ctx context.Context, id int64) (*Response, error) {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, exp)
	return &resp, nil
}

func (s *Service) toResponses(ctx context.Context, exps []experience.Experience) []Response {
	responses := make([]Response, 0, len(exps))
	for i := range exps {
		responses = append(responses, s.toResponse(ctx, &exps[i]))
	}
	return responses
}

func (s *Service) toResponse(ctx context.Context, exp *experience.Experience) Response {
	images := make([]ImageResponse, 0, len(exp.Images))
	for _, img := range exp.Images {
		ir := ImageResponse{ID: img.ID, FileName: img.FileName}
		url, _, err := s.storage.GenerateDownloadURL(ctx, img.StorageKey, s.config.DownloadURLExpiry)
		if err != nil {
			// response stays usable without the URL
			s.logger.Warn("failed to presign image URL",
				zap.String("storage_key", img.StorageKey),
				zap.Error(err))
		} else {
			ir.URL = url
		}
		images = append(images, ir)
	}

	return Response{
		ID:            exp.ID,
		Name:          exp.Name,
		StartDateTime: exp.StartDateTime.UTC().Format(time.RFC3339),
		EndDateTime:   exp.EndDateTime.UTC().Format(time.RFC3339),
		Address:       exp.Address,
		Position:      exp.Position,
		Description:   exp.Description,
		Hashtags:      exp.HashtagList(),
		Category:      string(exp.Category),
		Images:        images,
		CreatedBy:     exp.CreatedBy,
		CreatedAt:     exp.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     exp.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
