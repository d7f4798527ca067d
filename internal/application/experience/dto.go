package experience

import (
	"time"

	"github.com/jo-maerz/loka/internal/domain/experience"
)

// Input carries the experience fields accepted from the API boundary.
// Timestamps arrive already parsed; the HTTP layer owns wire formats.
type Input struct {
	Name          string
	StartDateTime time.Time
	EndDateTime   time.Time
	Address       string
	Position      experience.Position
	Description   string
	Hashtags      []string
	Category      string
}

// UploadFile is one image file received in a multipart request
type UploadFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ImageResponse is one attached image with a presigned download URL
type ImageResponse struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	URL      string `json:"url,omitempty"`
}

// Response is the experience shape returned to clients
type Response struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	StartDateTime string              `json:"startDateTime"`
	EndDateTime   string              `json:"endDateTime"`
	Address       string              `json:"address"`
	Position      experience.Position `json:"position"`
	Description   string              `json:"description"`
	Hashtags      []string            `json:"hashtags"`
	Category      string              `json:"category"`
	Images        []ImageResponse     `json:"images"`
	CreatedBy     string              `json:"createdBy"`
	CreatedAt     string              `json:"createdAt"`
	UpdatedAt     string              `json:"updatedAt"`
}
