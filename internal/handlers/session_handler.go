package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/response"
	"github.com/gravadigital/giftlist-api/internal/services"
	"github.com/gravadigital/giftlist-api/internal/validation"
)

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(u *user.User) (string, error)
}

type SessionHandler struct {
	users         *services.UserService
	issuer        TokenIssuer
	allowDevLogin bool
	log           *log.Logger
}

func NewSessionHandler(users *services.UserService, issuer TokenIssuer, allowDevLogin bool) *SessionHandler {
	return &SessionHandler{
		users:         users,
		issuer:        issuer,
		allowDevLogin: allowDevLogin,
		log:           logger.Handler("session"),
	}
}

type GuestSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

type UserSessionRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Image string `json:"image"`
}

// SessionResponse carries the token and the profile it was issued for
type SessionResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// CreateGuest handles POST /api/session/guest
func (h *SessionHandler) CreateGuest(c *gin.Context) {
	var req GuestSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	guest, err := h.users.CreateGuest(c.Request.Context(), req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.respondWithToken(c, guest)
}

// CreateUser handles POST /api/session/user. It stands in for the identity
// provider in development and is disabled otherwise.
func (h *SessionHandler) CreateUser(c *gin.Context) {
	if !h.allowDevLogin {
		response.ErrorResponseWithMessage(c, http.StatusNotFound, "Not found")
		return
	}

	var req UserSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		response.FromError(c, err)
		return
	}

	id := req.ID
	if id == "" {
		id = req.Email
	}
	h.log.Warn("Issuing development session", "email", req.Email)
	h.respondWithToken(c, user.NewRegistered(id, req.Name, req.Email, req.Image))
}

func (h *SessionHandler) respondWithToken(c *gin.Context, u *user.User) {
	token, err := h.issuer.Issue(u)
	if err != nil {
		h.log.Error("Failed to issue token", "email", u.Email, "error", err)
		response.ErrorResponseWithMessage(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	response.Created(c, "Session created", SessionResponse{Token: token, User: u})
}
