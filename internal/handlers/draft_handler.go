package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/response"
	"github.com/gravadigital/giftlist-api/internal/services"
)

// DraftHandler serves the draft staged under each list. The draft name is
// always derived from the list name.
type DraftHandler struct {
	drafts *services.DraftService
}

func NewDraftHandler(drafts *services.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

type UpsertDraftRequest struct {
	Links    []string `json:"links"`
	Messages []string `json:"messages"`
}

// Get handles GET /api/lists/:name/draft
func (h *DraftHandler) Get(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	listName := c.Param("name")
	v, err := h.drafts.FetchDraft(c.Request.Context(), owner.Email, listName, draft.NameFor(listName))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, v)
}

// Upsert handles PUT /api/lists/:name/draft
func (h *DraftHandler) Upsert(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req UpsertDraftRequest
	if !bindJSON(c, &req) {
		return
	}

	listName := c.Param("name")
	err := h.drafts.UpsertLinksAndMessages(c.Request.Context(), owner, listName, draft.NameFor(listName), req.Links, req.Messages)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Draft saved", nil)
}

// AddImage handles POST /api/lists/:name/draft/images. A multipart body is
// uploaded first; a JSON body stages an image that is already stored.
func (h *DraftHandler) AddImage(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}
	listName := c.Param("name")

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, imageName, ok := readUpload(c)
		if !ok {
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.BadRequestError(c, "Failed to read uploaded file")
			return
		}
		defer file.Close()

		img, err := h.drafts.UploadImage(c.Request.Context(), owner, listName, imageName,
			file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Created(c, "Image uploaded", img)
		return
	}

	var req ImageRequest
	if !bindJSON(c, &req) {
		return
	}
	img := list.Image{ImageName: req.ImageName, URL: req.URL}
	if err := h.drafts.AddImage(c.Request.Context(), owner, listName, draft.NameFor(listName), img); err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Image added", img)
}

// RemoveImage handles DELETE /api/lists/:name/draft/images
func (h *DraftHandler) RemoveImage(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req ImageRequest
	if !bindJSON(c, &req) {
		return
	}

	listName := c.Param("name")
	img := list.Image{ImageName: req.ImageName, URL: req.URL}
	if err := h.drafts.DeleteImage(c.Request.Context(), owner.Email, listName, draft.NameFor(listName), img); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// RemoveLink handles DELETE /api/lists/:name/draft/links
func (h *DraftHandler) RemoveLink(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req ItemRequest
	if !bindJSON(c, &req) {
		return
	}

	listName := c.Param("name")
	if err := h.drafts.DeleteLinkItem(c.Request.Context(), owner.Email, listName, draft.NameFor(listName), req.Value); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// RemoveMessage handles DELETE /api/lists/:name/draft/messages
func (h *DraftHandler) RemoveMessage(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req ItemRequest
	if !bindJSON(c, &req) {
		return
	}

	listName := c.Param("name")
	if err := h.drafts.DeleteMessageItem(c.Request.Context(), owner.Email, listName, draft.NameFor(listName), req.Value); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}
