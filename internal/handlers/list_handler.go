package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/response"
	"github.com/gravadigital/giftlist-api/internal/services"
)

type ListHandler struct {
	lists *services.ListService
}

func NewListHandler(lists *services.ListService) *ListHandler {
	return &ListHandler{lists: lists}
}

type CreateListRequest struct {
	Name     string   `json:"name" binding:"required"`
	Links    []string `json:"links"`
	Messages []string `json:"messages"`
}

// GetAll handles GET /api/lists
func (h *ListHandler) GetAll(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	lists, err := h.lists.GetAll(c.Request.Context(), owner.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, lists)
}

// CreateOrAppend handles POST /api/lists
func (h *ListHandler) CreateOrAppend(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req CreateListRequest
	if !bindJSON(c, &req) {
		return
	}

	l, err := h.lists.CreateOrAppend(c.Request.Context(), owner, req.Name, req.Links, req.Messages)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "List saved", l)
}

// Get handles GET /api/lists/:name
func (h *ListHandler) Get(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	l, err := h.lists.GetByName(c.Request.Context(), owner.Email, c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, l)
}

// Delete handles DELETE /api/lists/:name
func (h *ListHandler) Delete(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	if err := h.lists.DeleteList(c.Request.Context(), owner.Email, c.Param("name")); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "List deleted", nil)
}

// RemoveLink handles DELETE /api/lists/:name/links
func (h *ListHandler) RemoveLink(c *gin.Context) {
	h.removeItem(c, services.ItemLink)
}

// RemoveMessage handles DELETE /api/lists/:name/messages
func (h *ListHandler) RemoveMessage(c *gin.Context) {
	h.removeItem(c, services.ItemMessage)
}

func (h *ListHandler) removeItem(c *gin.Context, kind services.ItemKind) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req ItemRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.lists.RemoveItem(c.Request.Context(), owner.Email, c.Param("name"), req.Value, kind); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetImages handles GET /api/lists/:name/images
func (h *ListHandler) GetImages(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	images, err := h.lists.GetImages(c.Request.Context(), owner.Email, c.Param("name"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, images)
}

// UploadImage handles POST /api/lists/:name/images
func (h *ListHandler) UploadImage(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

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

	img, err := h.lists.UploadImage(c.Request.Context(), owner, c.Param("name"), imageName,
		file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Image uploaded", img)
}

// RemoveImage handles DELETE /api/lists/:name/images
func (h *ListHandler) RemoveImage(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req ImageRequest
	if !bindJSON(c, &req) {
		return
	}

	img := list.Image{ImageName: req.ImageName, URL: req.URL}
	if err := h.lists.RemoveImage(c.Request.Context(), owner.Email, c.Param("name"), img); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// readUpload extracts the multipart file and its display name
func readUpload(c *gin.Context) (*multipart.FileHeader, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequestError(c, "Image file is required")
		return nil, "", false
	}

	imageName := c.PostForm("imageName")
	if imageName == "" {
		imageName = fileHeader.Filename
	}
	return fileHeader, imageName, true
}
