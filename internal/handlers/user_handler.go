package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/middleware"
	"github.com/gravadigital/giftlist-api/internal/response"
	"github.com/gravadigital/giftlist-api/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type RegisterRequest struct {
	Image string `json:"image"`
}

type CleanupGuestsRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

// Register handles POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.UnauthorizedError(c, "Please sign in to continue")
		return
	}

	var req RegisterRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	u, err := h.users.Register(c.Request.Context(), claims.Subject, claims.Owner(), req.Image)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "User registered", u)
}

// GetMe handles GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	u, err := h.users.GetUser(c.Request.Context(), owner)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, u)
}

// DeleteMe handles DELETE /api/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), owner.Email); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// CleanupGuests handles POST /api/users/guests/cleanup
func (h *UserHandler) CleanupGuests(c *gin.Context) {
	var req CleanupGuestsRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.users.DeleteGuests(c.Request.Context(), req.Emails)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": n})
}
