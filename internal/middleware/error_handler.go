package middleware

import (
	"errors"
	"net/http"

	"nfcExperience/pkg/logger"

	"github.com/labstack/echo/v4"
)

// FallbackError is rendered for anything the handlers did not answer
// themselves. Reload tells the client a full page reload is the way out.
type FallbackError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reload  bool   `json:"reload"`
}

// ErrorHandler is the echo HTTPErrorHandler. echo's own HTTP errors keep
// their status; anything else, recovered panics included, becomes a
// generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusInternalServerError {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		respond(c, he.Code, FallbackError{
			Code:    http.StatusText(he.Code),
			Message: msg,
		})
		return
	}

	logger.Error("unhandled request error",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", err,
	)
	respond(c, http.StatusInternalServerError, FallbackError{
		Code:    "INTERNAL",
		Message: "Something went wrong",
		Reload:  true,
	})
}

func respond(c echo.Context, status int, body FallbackError) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}
