package subscriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ask-mark/infra/queue"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store persists captured addresses.
type Store interface {
	Save(ctx context.Context, s *Subscriber) error
}

// Publisher forwards events to a message queue.
type Publisher interface {
	Send(ctx context.Context, topic string, msg queue.Message) error
}

// Signup is one address handed to the Recorder.
type Signup struct {
	Email          string
	Name           string
	ConversationID string
	Source         Source
}

// Recorder stores and forwards captured addresses. With no store and no publisher it only logs.
type Recorder struct {
	store     Store
	publisher Publisher
	topic     string
	logger    *zap.Logger
	now       func() time.Time
}

type RecorderOption func(*Recorder)

func WithStore(store Store) RecorderOption {
	return func(r *Recorder) {
		r.store = store
	}
}

func WithPublisher(publisher Publisher, topic string) RecorderOption {
	return func(r *Recorder) {
		r.publisher = publisher
		r.topic = topic
	}
}

func NewRecorder(logger *zap.Logger, opts ...RecorderOption) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record saves then publishes the signup. Both steps run even if one fails.
func (r *Recorder) Record(ctx context.Context, s Signup) error {
	r.logger.Info("email captured",
		zap.String("email", s.Email),
		zap.String("conversation_id", s.ConversationID),
		zap.String("source", string(s.Source)))

	var errs []error
	if r.store != nil {
		err := r.store.Save(ctx, &Subscriber{
			Email:          s.Email,
			Name:           s.Name,
			ConversationID: s.ConversationID,
			Source:         s.Source,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if r.publisher != nil {
		if err := r.publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Recorder) publish(ctx context.Context, s Signup) error {
	ev := Event{
		ID:             uuid.NewString(),
		Type:           s.Source,
		Email:          s.Email,
		Name:           s.Name,
		ConversationID: s.ConversationID,
		OccurredAt:     r.now().UTC(),
	}
	msg, err := queue.NewMessage(ev.ID, string(ev.Type), ev)
	if err != nil {
		return err
	}
	if err := r.publisher.Send(ctx, r.topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}
