package handlers

import (
	"errors"
	"net/http"

	"dashboard/internal/domain"
	"dashboard/internal/http/middleware"
	"dashboard/internal/liststate"
	"dashboard/internal/store"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads for new handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain, engine and upstream errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var apiErr *store.APIError
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, liststate.ErrClosed):
		respondError(c, http.StatusNotFound, "view_closed", err.Error(), nil)
	case errors.Is(err, liststate.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "record_not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, conflictCode(err), err.Error(), nil)
	case domain.IsDelete(err) && errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		respondError(c, apiErr.Status, "delete_failed", apiErr.Error(), nil)
	case domain.IsDelete(err):
		respondError(c, http.StatusBadGateway, "delete_failed", err.Error(), nil)
	case domain.IsInternal(err):
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, liststate.ErrDeleteUnsupported):
		return "delete_unsupported"
	case errors.Is(err, liststate.ErrDeleteBusy),
		errors.Is(err, liststate.ErrDeleteInProgress),
		errors.Is(err, liststate.ErrNotConfirming):
		return "invalid_delete_state"
	default:
		return "conflict"
	}
}
