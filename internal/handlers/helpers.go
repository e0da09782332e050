package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
)

// ErrorDetail represents the inner error payload.
type ErrorDetail struct {
	Code    string `json:"code" example:"NOT_FOUND"`
	Message string `json:"message" example:"Resource not found"`
}

// ErrorResponse represents an error response envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// getUserID extracts the authenticated user ID from the context.
func getUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		respondWithError(c, apperrors.ErrUnauthorized)
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok {
		respondWithError(c, apperrors.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

// parsePathID parses a numeric path parameter.
func parsePathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
			name+" must be a date in YYYY-MM-DD format"))
		return nil, false
	}
	return &date, true
}

// respondWithError writes an AppError as a JSON error envelope. Unknown
// errors are masked as internal server errors and logged.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error", "error", err, "path", c.Request.URL.Path)
		appErr = apperrors.ErrInternalServer
	}
	if appErr.Internal != nil {
		logger.Get().Errorw("request failed",
			"error", appErr.Internal,
			"code", appErr.Code,
			"path", c.Request.URL.Path,
		)
	}
	c.JSON(appErr.StatusCode, ErrorResponse{
		Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message},
	})
}
