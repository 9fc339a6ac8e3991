package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
)

// Response is the uniform API envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse sends a successful envelope
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// OK sends a 200 envelope with data
func OK(c *gin.Context, data interface{}) {
	SuccessResponse(c, http.StatusOK, "", data)
}

// Created sends a 201 envelope with data
func Created(c *gin.Context, message string, data interface{}) {
	SuccessResponse(c, http.StatusCreated, message, data)
}

// ErrorResponseWithMessage sends a failed envelope
func ErrorResponseWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Message: message,
	})
}

// BadRequestError sends a 400
func BadRequestError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusBadRequest, message)
}

// UnauthorizedError sends a 401
func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponseWithMessage(c, http.StatusUnauthorized, message)
}

// StatusFor maps an error kind onto an HTTP status code
func StatusFor(kind common.Kind) int {
	switch kind {
	case common.KindInvalidArgument, common.KindLimitExceeded,
		common.KindPreconditionFailed, common.KindVerificationFailed:
		return http.StatusBadRequest
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts a service error into a failed envelope. Upstream causes
// are never exposed to the client.
func FromError(c *gin.Context, err error) {
	_ = c.Error(err)
	ErrorResponseWithMessage(c, StatusFor(common.KindOf(err)), common.MessageOf(err))
}
