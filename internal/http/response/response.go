package response

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondFromError maps domain errors to HTTP statuses.
func RespondFromError(c *gin.Context, code string, err error) {
	var unsupported *apperr.UnsupportedMediaError
	switch {
	case stderrors.Is(err, apperr.ErrNotFound):
		RespondError(c, http.StatusNotFound, code, err)
	case stderrors.Is(err, apperr.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, code, err)
	case stderrors.As(err, &unsupported):
		RespondError(c, http.StatusUnsupportedMediaType, code, err)
	default:
		RespondError(c, http.StatusInternalServerError, code, err)
	}
}
