package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourhub/internal/domain/shared/apperr"
)

type errorBody struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindPriceMismatch, apperr.KindState, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindExternalProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place where application errors become responses.
// Unclassified errors never leak their text to the client.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		logger.ErrorContext(c.Request.Context(), "request failed", "route", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Message: "internal error"})
		return
	}
	status := statusFor(ae.Kind)
	body := errorBody{Message: ae.Message, Code: ae.Code, Errors: ae.Fields}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "request failed", "route", c.FullPath(), "kind", ae.Kind, "error", err)
		if ae.Kind == apperr.KindDataIntegrity {
			body = errorBody{Message: ae.Message}
		}
	} else {
		logger.WarnContext(c.Request.Context(), "request rejected", "route", c.FullPath(), "kind", ae.Kind, "error", err)
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, logger *slog.Logger, err error) {
	writeError(c, logger, apperr.Validation("invalid request body", apperr.FieldError{Field: "body", Message: err.Error()}))
}
