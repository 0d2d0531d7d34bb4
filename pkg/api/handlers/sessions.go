package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/provizor/provizor/pkg/auth"
)

// SessionHandlers handles login requests
type SessionHandlers struct {
	authSvc *auth.Service
}

// NewSessionHandlers creates a new SessionHandlers instance
func NewSessionHandlers(authSvc *auth.Service) *SessionHandlers {
	return &SessionHandlers{authSvc: authSvc}
}

// Login handles POST /api/login
func (h *SessionHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewAPIError(
			http.StatusBadRequest, "Bad Request", "Username and password are required"))
		return
	}

	resp, err := h.authSvc.Login(&req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, NewAPIError(
				http.StatusUnauthorized, "Unauthorized", "Invalid username or password"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewAPIError(
			http.StatusInternalServerError, "Internal Server Error", "Authentication error"))
		return
	}

	c.JSON(http.StatusOK, resp)
}
