// Package handlers adapts HTTP requests to the services
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/middleware"
	"github.com/gravadigital/giftlist-api/internal/response"
)

// ownerFrom returns the session owner, writing a 401 when there is none
func ownerFrom(c *gin.Context) (user.Owner, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.UnauthorizedError(c, "Please sign in to continue")
		return user.Owner{}, false
	}
	return claims.Owner(), true
}

// bindJSON decodes the body into req, writing a 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		response.BadRequestError(c, "Invalid request payload")
		return false
	}
	return true
}

// ItemRequest names a single link or message to remove
type ItemRequest struct {
	Value string `json:"value" binding:"required"`
}

// ImageRequest names an image by its name and url
type ImageRequest struct {
	ImageName string `json:"imageName" binding:"required"`
	URL       string `json:"url" binding:"required"`
}
