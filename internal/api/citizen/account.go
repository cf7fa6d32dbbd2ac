package citizen

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/swachhta-hub/internal/service/account"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
	City     string `json:"city"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns an access token.
// POST /api/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.Accounts.Register(c.Request.Context(), account.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		City:     req.City,
	})
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	h.sessionResponse(c, http.StatusCreated, session)
}

// Login verifies credentials, updates the streak and returns an access token.
// POST /api/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errorResponse(c, err)
		return
	}

	h.sessionResponse(c, http.StatusOK, session)
}

func (h *Handler) sessionResponse(c *gin.Context, status int, session *account.Session) {
	c.JSON(status, gin.H{
		"success":    true,
		"token":      session.Token,
		"expires_at": session.ExpiresAt.UTC(),
		"user":       newUserView(session.User),
	})
}
