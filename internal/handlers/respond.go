package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(c *gin.Context) string {
	if id := middleware.RequestIDFromContext(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-Id")
}

func apiError(c *gin.Context, code, message string, details interface{}) APIError {
	return APIError{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(c),
		Details:   details,
	}
}

func RespondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, gin.H{"error": apiError(c, code, message, details)})
}

func RespondBadRequest(c *gin.Context, message string, details interface{}) {
	RespondError(c, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(c *gin.Context, code, message string) {
	RespondError(c, http.StatusConflict, code, message, nil)
}

// RespondForbidden keeps the top-level message existing clients read.
func RespondForbidden(c *gin.Context, message, reason string) {
	c.JSON(http.StatusForbidden, gin.H{
		"message": message,
		"error":   apiError(c, "forbidden", message, gin.H{"reason": reason}),
	})
}

func RespondInternal(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, "internal_error", message, nil)
}
