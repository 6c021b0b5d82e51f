package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/apperrors"
)

// --- Response Types ---

// ErrorResponse is the standard error envelope: a boolean indicator and
// a human-readable French message, plus an optional machine code.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"error_code,omitempty"`
}

// MessageResponse is the standard success envelope for mutations.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps collection payloads with a count and timestamp,
// the shape the frontend consumes.
type ListResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

// --- Error Response Helpers ---

// respondAppError translates a domain error into its HTTP status.
// Unexpected errors are logged and hidden behind a generic 500.
func respondAppError(c *gin.Context, err error, context string) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.Status, ErrorResponse{Message: appErr.Message, Code: appErr.Code})
		return
	}
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: apperrors.ErrInternal.Message})
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// --- Success Response Helpers ---

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Success: true, Message: message})
}

func respondMessageData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, MessageResponse{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, message string, data any, count int) {
	c.JSON(http.StatusOK, ListResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Count:     count,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates a positive integer ID from URL
// parameters. Responds with a 400 error and returns false on failure.
func parseIDParam(c *gin.Context, label string) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "L'ID "+label+" doit être un nombre positif")
		return 0, false
	}
	return uint(id), true
}

func parseQueryUint(value string) (uint, bool) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts the frontend's plain date format as well as
// RFC 3339 timestamps.
func parseDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
