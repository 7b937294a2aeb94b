package rest

import (
	"net/http"
	"time"

	"nfcExperience/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type SessionTokenIssuer interface {
	Issue() (token string, sessionID string, expiresAt time.Time, err error)
}

type SessionHandler struct {
	tokens SessionTokenIssuer
}

func NewSessionHandler(tokens SessionTokenIssuer) *SessionHandler {
	return &SessionHandler{tokens: tokens}
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// POST /api/v1/sessions
func (h *SessionHandler) Create(c echo.Context) error {
	token, sessionID, expiresAt, err := h.tokens.Issue()
	if err != nil {
		logger.Error("failed to issue session token", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to create session"})
	}

	logger.Debug("experience session issued", "session", sessionID)
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}))
}
