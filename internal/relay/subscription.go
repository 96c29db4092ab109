package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ask-mark/internal/domain"
	"ask-mark/internal/mailer"
	"ask-mark/internal/subscriber"

	"go.uber.org/zap"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, email mailer.Email) (string, error)
}

// Recorder keeps captured addresses.
type Recorder interface {
	Record(ctx context.Context, s subscriber.Signup) error
}

type SubscribeRequest struct {
	Email          string `json:"email"`
	ConversationID string `json:"conversationId"`
	Name           string `json:"name"`
}

type TranscriptRequest struct {
	Email          string              `json:"email"`
	Name           string              `json:"name"`
	Messages       []domain.RawMessage `json:"messages"`
	ConversationID string              `json:"conversationId"`
}

// SubscriptionRelay captures email addresses and mails conversation transcripts.
type SubscriptionRelay struct {
	sender   Sender
	notifyTo string
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time
}

// NewSubscriptionRelay accepts a nil sender or an empty notifyTo; transcripts then fail
// with ErrServiceUnconfigured.
func NewSubscriptionRelay(sender Sender, notifyTo string, recorder Recorder, log *zap.Logger) *SubscriptionRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubscriptionRelay{
		sender:   sender,
		notifyTo: strings.TrimSpace(notifyTo),
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

func (r *SubscriptionRelay) Subscribe(ctx context.Context, req SubscribeRequest) error {
	if err := domain.ValidateEmail(req.Email); err != nil {
		return err
	}
	if r.recorder == nil {
		r.log.Info("email signup", zap.String("email", req.Email), zap.String("conversation_id", req.ConversationID))
		return nil
	}
	err := r.recorder.Record(ctx, subscriber.Signup{
		Email:          req.Email,
		Name:           req.Name,
		ConversationID: req.ConversationID,
		Source:         subscriber.SourceSubscribe,
	})
	if err != nil {
		return fmt.Errorf("record signup: %w: %w", err, domain.ErrUpstreamFailure)
	}
	return nil
}

// SendTranscript mails the conversation to the user, then a notice to the internal address.
// Nothing is sent when the mailer is not configured, and the notice is skipped if the
// first send fails.
func (r *SubscriptionRelay) SendTranscript(ctx context.Context, req TranscriptRequest) error {
	if err := domain.ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := domain.ValidateHistory(req.Messages); err != nil {
		return err
	}
	if r.sender == nil || r.notifyTo == "" {
		return fmt.Errorf("transcript mailer: %w", domain.ErrServiceUnconfigured)
	}

	transcript := mailer.Transcript{
		Name:           req.Name,
		Email:          req.Email,
		ConversationID: req.ConversationID,
		Messages:       domain.Normalize(req.Messages),
		SentAt:         r.now(),
	}
	text, html, err := transcript.Render()
	if err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	notice, err := transcript.RenderNotification()
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	if _, err := r.sender.Send(ctx, mailer.Email{
		To:      []string{req.Email},
		Subject: "Your conversation with Ask Mark",
		Text:    text,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("send transcript: %w", err)
	}

	if _, err := r.sender.Send(ctx, mailer.Email{
		To:      []string{r.notifyTo},
		Subject: "Ask Mark transcript sent to " + req.Email,
		Text:    notice + "\n" + text,
		ReplyTo: req.Email,
	}); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if r.recorder != nil {
		err := r.recorder.Record(ctx, subscriber.Signup{
			Email:          req.Email,
			Name:           req.Name,
			ConversationID: req.ConversationID,
			Source:         subscriber.SourceTranscript,
		})
		if err != nil {
			r.log.Warn("record transcript recipient failed", zap.String("email", req.Email), zap.Error(err))
		}
	}
	return nil
}
