package relay

import (
	"context"
	"fmt"

	"ask-mark/internal/domain"
	"ask-mark/internal/llm"

	"go.uber.org/zap"
)

// Completer is the upstream text-completion service.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error)
}

type ChatRequest struct {
	Messages       []domain.RawMessage `json:"messages"`
	ConversationID string              `json:"conversationId"`
}

type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

type ChatReply struct {
	Message           string `json:"message"`
	ConversationID    string `json:"conversationId"`
	ShouldPromptEmail bool   `json:"shouldPromptEmail"`
	Usage             Usage  `json:"usage"`
}

// ChatRelay forwards a conversation to the completion service under the persona prompt.
type ChatRelay struct {
	completer Completer
	persona   string
	log       *zap.Logger
}

// NewChatRelay accepts a nil completer; every reply then fails with ErrServiceUnconfigured.
func NewChatRelay(completer Completer, persona string, log *zap.Logger) *ChatRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatRelay{completer: completer, persona: persona, log: log}
}

// Reply makes exactly one upstream attempt.
func (r *ChatRelay) Reply(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if err := domain.ValidateHistory(req.Messages); err != nil {
		return nil, err
	}
	if r.completer == nil {
		return nil, fmt.Errorf("chat relay: %w", domain.ErrServiceUnconfigured)
	}

	history := domain.Normalize(req.Messages)
	out, err := r.completer.Complete(ctx, llm.CompletionRequest{System: r.persona, Messages: history})
	if err != nil {
		return nil, fmt.Errorf("chat relay: %w", err)
	}

	reply := &ChatReply{
		Message:           out.Text,
		ConversationID:    domain.NewConversationID(req.ConversationID),
		ShouldPromptEmail: domain.ShouldPromptEmail(history),
		Usage: Usage{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
		},
	}
	r.log.Debug("chat reply",
		zap.String("conversation_id", reply.ConversationID),
		zap.Int("messages", len(history)),
		zap.Int("input_tokens", reply.Usage.InputTokens),
		zap.Int("output_tokens", reply.Usage.OutputTokens))
	return reply, nil
}
