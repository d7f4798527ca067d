package handler

import (
	"github.com/gin-gonic/gin"

	revapp "github.com/jo-maerz/loka/internal/application/review"
)

// ReviewHandler handles review API endpoints
type ReviewHandler struct {
	BaseHandler
	service *revapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service *revapp.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// ReviewRequest is the request body for creating or updating a review
type ReviewRequest struct {
	Stars int    `json:"stars" binding:"required,min=1,max=5"`
	Text  string `json:"text" binding:"required,max=1000"`
}

// RegisterRoutes registers the review routes. Listing an experience's
// reviews is public; everything else needs a token.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	reviews := rg.Group("/reviews")
	{
		reviews.GET("/experiences/:experienceId", h.ListByExperience)
		reviews.POST("/experiences/:experienceId", authRequired, h.Create)
		reviews.PUT("/:id", authRequired, h.Update)
		reviews.DELETE("/:id", authRequired, h.Delete)
	}
}

// ListByExperience returns the reviews of one experience with reviewer info
func (h *ReviewHandler) ListByExperience(c *gin.Context) {
	experienceID, err := parseID(c.Param("experienceId"))
	if err != nil {
		h.BadRequest(c, "Invalid experience id")
		return
	}

	responses, err := h.service.GetByExperience(c.Request.Context(), experienceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, responses)
}

// Create stores a new review by the caller for an experience
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	experienceID, err := parseID(c.Param("experienceId"))
	if err != nil {
		h.BadRequest(c, "Invalid experience id")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	response, err := h.service.Create(c.Request.Context(), experienceID, revapp.Input{
		Stars: req.Stars,
		Text:  req.Text,
	}, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, response)
}

// Update overwrites the stars and text of the caller's review
func (h *ReviewHandler) Update(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid review id")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	response, err := h.service.Update(c.Request.Context(), id, revapp.Input{
		Stars: req.Stars,
		Text:  req.Text,
	}, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, response)
}

// Delete removes a review
func (h *ReviewHandler) Delete(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid review id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
