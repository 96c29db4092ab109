package handler

import (
	"context"
	"net/http"

	"ask-mark/internal/apierror"
	"ask-mark/internal/domain"
	"ask-mark/internal/relay"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, req relay.SubscribeRequest) error
	SendTranscript(ctx context.Context, req relay.TranscriptRequest) error
}

type SubscriptionHandler struct {
	svc SubscriptionService
	log *zap.Logger
}

func NewSubscriptionHandler(svc SubscriptionService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, log: log}
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req relay.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, h.log, domain.NewValidationError("email", "Valid email is required"), "")
		return
	}
	if err := h.svc.Subscribe(c.Request.Context(), req); err != nil {
		apierror.Abort(c, h.log, err, "Could not process signup. Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Thanks for signing up!",
	})
}

func (h *SubscriptionHandler) SendTranscript(c *gin.Context) {
	var req relay.TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Abort(c, h.log, domain.NewValidationError("body", "Valid email and messages are required"), "")
		return
	}
	if err := h.svc.SendTranscript(c.Request.Context(), req); err != nil {
		apierror.Abort(c, h.log, err, "Could not send transcript. Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Transcript sent! Check your inbox.",
	})
}
