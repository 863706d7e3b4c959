package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado/internal/store"
	"mercado/internal/validate"
)

// Request errors. Validation errors live in package validate.
var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limited")
)

// statusFor maps an error to the HTTP status and the message shown to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, validate.ErrMissingFields):
		return http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, validate.ErrInvalidPrice):
		return http.StatusBadRequest, "Invalid price"
	case errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest, "Invalid JSON"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests"
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict, "Product id conflict"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// abortWithError writes {"error": msg} and stops the handler chain.
// Server-side failures are logged; their details never reach the client.
func abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
