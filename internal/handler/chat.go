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

type ChatReplier interface {
	Reply(ctx context.Context, req relay.ChatRequest) (*relay.ChatReply, error)
}

type ChatHandler struct {
	relay ChatReplier
	log   *zap.Logger
}

func NewChatHandler(r ChatReplier, log *zap.Logger) *ChatHandler {
	return &ChatHandler{relay: r, log: log}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req relay.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug("chat request binding error", zap.Error(err))
		apierror.Abort(c, h.log, domain.NewValidationError("messages", "Messages array is required"), "")
		return
	}

	reply, err := h.relay.Reply(c.Request.Context(), req)
	if err != nil {
		apierror.Abort(c, h.log, err, "Something went wrong. Please try again.")
		return
	}
	c.JSON(http.StatusOK, reply)
}
