package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/response"
	"github.com/gravadigital/giftlist-api/internal/services"
)

// PublicHandler serves published lists without a session
type PublicHandler struct {
	lists *services.ListService
}

func NewPublicHandler(lists *services.ListService) *PublicHandler {
	return &PublicHandler{lists: lists}
}

// GetList handles GET /api/public/:email/:name
func (h *PublicHandler) GetList(c *gin.Context) {
	l, err := h.lists.PublicView(c.Request.Context(), c.Param("email"), c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, l)
}

// RandomItem handles GET /api/public/:email/:name/random
func (h *PublicHandler) RandomItem(c *gin.Context) {
	pick, err := h.lists.RandomItem(c.Request.Context(), c.Param("email"), c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, pick)
}
