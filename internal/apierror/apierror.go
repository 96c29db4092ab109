// Package apierror turns domain errors into HTTP responses without leaking internals.
package apierror

import (
	"errors"
	"net/http"

	"ask-mark/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MsgRateLimited  = "Too many requests. Please wait a moment before trying again."
	MsgBusy         = "Service is busy. Please try again in a moment."
	MsgUnconfigured = "Service is not configured. Please try again later."
)

// Resolve picks the status and public message for err. fallback is used for anything
// that is not a known client-facing error.
func Resolve(err error, fallback string) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	case errors.Is(err, domain.ErrUpstreamOverload):
		return http.StatusTooManyRequests, MsgBusy
	case errors.Is(err, domain.ErrServiceUnconfigured):
		return http.StatusInternalServerError, MsgUnconfigured
	default:
		return http.StatusInternalServerError, fallback
	}
}

// Abort writes {"error": msg} and stops the handler chain. Server-side failures are logged.
func Abort(c *gin.Context, log *zap.Logger, err error, fallback string) {
	status, msg := Resolve(err, fallback)
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
