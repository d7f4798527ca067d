package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/jo-maerz/loka/internal/application/identity"
)

// AuthHandler handles account signup. Login and token refresh are the
// identity provider's business; this service only registers accounts.
type AuthHandler struct {
	BaseHandler
	service *identityapp.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *identityapp.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignupRequest is the request body for registering an account
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
	}
}

// Signup registers the account with the identity provider and mirrors it
// into the local user table
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	response, err := h.service.Signup(c.Request.Context(), identityapp.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, response)
}
