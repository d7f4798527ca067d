package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	expapp "github.com/jo-maerz/loka/internal/application/experience"
	"github.com/jo-maerz/loka/internal/domain/experience"
)

// ExperienceHandler handles experience API endpoints
type ExperienceHandler struct {
	BaseHandler
	service *expapp.Service
}

// NewExperienceHandler creates a new ExperienceHandler
func NewExperienceHandler(service *expapp.Service) *ExperienceHandler {
	return &ExperienceHandler{service: service}
}

// PositionRequest is the coordinate pair of an experience
type PositionRequest struct {
	Lat *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
}

// ExperienceRequest is the JSON part of the multipart create/update request
type ExperienceRequest struct {
	Name          string          `json:"name" binding:"required,max=200"`
	StartDateTime string          `json:"startDateTime" binding:"required"`
	EndDateTime   string          `json:"endDateTime" binding:"required"`
	Address       string          `json:"address" binding:"required,max=500"`
	Position      PositionRequest `json:"position" binding:"required"`
	Description   string          `json:"description"`
	Hashtags      []string        `json:"hashtags" binding:"max=20,dive,max=100"`
	Category      string          `json:"category" binding:"max=50"`
}

// RegisterRoutes registers the experience routes. Reads are public; the
// auth and role middlewares guard the mutating routes.
func (h *ExperienceHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc, creatorRequired gin.HandlerFunc) {
	experiences := rg.Group("/experiences")
	{
		experiences.GET("", h.List)
		experiences.GET("/search", h.Search)
		experiences.GET("/:id", h.Get)
		experiences.POST("", authRequired, creatorRequired, h.Create)
		experiences.PUT("/:id", authRequired, h.Update)
		experiences.DELETE("/:id", authRequired, h.Delete)
	}
}

// List returns all experiences
func (h *ExperienceHandler) List(c *gin.Context) {
	responses, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, responses)
}

// Search returns the experiences matching the city/date/category query
func (h *ExperienceHandler) Search(c *gin.Context) {
	filter := experience.Filter{
		City:     c.Query("city"),
		Category: experience.Category(c.Query("category")),
	}

	if raw := c.Query("startDateTime"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "startDateTime must be an RFC 3339 timestamp")
			return
		}
		filter.Start = &start
	}
	if raw := c.Query("endDateTime"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "endDateTime must be an RFC 3339 timestamp")
			return
		}
		filter.End = &end
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		h.BadRequest(c, "endDateTime must not be before startDateTime")
		return
	}

	responses, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, responses)
}

// Get returns one experience by id
func (h *ExperienceHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid experience id")
		return
	}

	response, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, response)
}

// Create creates an experience from a multipart request: an `experience`
// JSON part plus optional `images` file parts
func (h *ExperienceHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	input, files, ok := h.bindMultipart(c)
	if !ok {
		return
	}

	response, err := h.service.Create(c.Request.Context(), input, files, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, response)
}

// Update replaces an experience, same multipart shape as Create
func (h *ExperienceHandler) Update(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid experience id")
		return
	}

	input, files, ok := h.bindMultipart(c)
	if !ok {
		return
	}

	response, err := h.service.Update(c.Request.Context(), id, input, files, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, response)
}

// Delete removes an experience and its stored images
func (h *ExperienceHandler) Delete(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid experience id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// bindMultipart parses the `experience` JSON part and the `images` file
// parts. On failure it writes the error response and returns ok=false.
func (h *ExperienceHandler) bindMultipart(c *gin.Context) (expapp.Input, []expapp.UploadFile, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Request must be multipart/form-data")
		return expapp.Input{}, nil, false
	}

	values := form.Value["experience"]
	if len(values) == 0 {
		h.BadRequest(c, "Missing experience part")
		return expapp.Input{}, nil, false
	}

	var req ExperienceRequest
	if err := json.Unmarshal([]byte(values[0]), &req); err != nil {
		h.BadRequest(c, "Experience part is not valid JSON")
		return expapp.Input{}, nil, false
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		h.ValidationError(c, err)
		return expapp.Input{}, nil, false
	}

	start, err := time.Parse(time.RFC3339, req.StartDateTime)
	if err != nil {
		h.BadRequest(c, "startDateTime must be an RFC 3339 timestamp")
		return expapp.Input{}, nil, false
	}
	end, err := time.Parse(time.RFC3339, req.EndDateTime)
	if err != nil {
		h.BadRequest(c, "endDateTime must be an RFC 3339 timestamp")
		return expapp.Input{}, nil, false
	}

	files, err := readUploadFiles(form.File["images"])
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded image")
		return expapp.Input{}, nil, false
	}

	input := expapp.Input{
		Name:          req.Name,
		StartDateTime: start,
		EndDateTime:   end,
		Address:       req.Address,
		Position:      experience.Position{Lat: *req.Position.Lat, Lng: *req.Position.Lng},
		Description:   req.Description,
		Hashtags:      req.Hashtags,
		Category:      req.Category,
	}
	return input, files, true
}

// readUploadFiles buffers the multipart image parts
func readUploadFiles(headers []*multipart.FileHeader) ([]expapp.UploadFile, error) {
	files := make([]expapp.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		closeErr := file.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, closeErr
		}
		files = append(files, expapp.UploadFile{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

// parseID parses a positive int64 path parameter
func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
