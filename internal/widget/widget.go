// Package widget holds the client-side chat state and talks to the service over HTTP.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ask-mark/internal/domain"
)

const GenericError = "Something went wrong. Please try again."

// ErrBusy is returned by Submit while a previous submission is still in flight.
var ErrBusy = errors.New("widget: a message is already being sent")

type EmailState int

const (
	EmailHidden EmailState = iota
	EmailShown
	EmailDismissed
	EmailSubmitted
)

func (s EmailState) String() string {
	switch s {
	case EmailShown:
		return "shown"
	case EmailDismissed:
		return "dismissed"
	case EmailSubmitted:
		return "submitted"
	default:
		return "hidden"
	}
}

// State is a snapshot of the widget.
type State struct {
	Messages       []domain.Message
	Input          string
	Loading        bool
	ConversationID string
	Error          string
	Email          EmailState
}

// Widget is safe for concurrent use. At most one chat request is outstanding at a time.
type Widget struct {
	api API

	mu             sync.Mutex
	messages       []domain.Message
	input          string
	loading        bool
	conversationID string
	errText        string
	email          EmailState
}

func New(api API) *Widget {
	return &Widget{api: api}
}

func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	w.input = text
	w.mu.Unlock()
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Messages:       append([]domain.Message(nil), w.messages...),
		Input:          w.input,
		Loading:        w.loading,
		ConversationID: w.conversationID,
		Error:          w.errText,
		Email:          w.email,
	}
}

// Submit sends text as the next user turn. Blank text is ignored. On failure the history
// is kept and the error text is set; the returned error is the cause.
func (w *Widget) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	w.mu.Lock()
	if w.loading {
		w.mu.Unlock()
		return ErrBusy
	}
	w.messages = append(w.messages, domain.Message{Role: domain.RoleUser, Content: text})
	req := ChatRequest{
		Messages:       append([]domain.Message(nil), w.messages...),
		ConversationID: w.conversationID,
	}
	w.input = ""
	w.errText = ""
	w.loading = true
	w.mu.Unlock()

	resp, err := w.api.Chat(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		w.errText = ErrorText(err)
		return err
	}
	w.messages = append(w.messages, domain.Message{Role: domain.RoleAssistant, Content: resp.Message})
	w.conversationID = resp.ConversationID
	if resp.ShouldPromptEmail && w.email != EmailDismissed && w.email != EmailSubmitted {
		w.email = EmailShown
	}
	return nil
}

// SubmitEmail subscribes email. Blank input is ignored.
func (w *Widget) SubmitEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	w.mu.Lock()
	convID := w.conversationID
	w.mu.Unlock()

	if err := w.api.Subscribe(ctx, SubscribeRequest{Email: email, ConversationID: convID}); err != nil {
		return err
	}
	w.mu.Lock()
	w.email = EmailSubmitted
	w.mu.Unlock()
	return nil
}

// SendTranscript mails the conversation so far to email.
func (w *Widget) SendTranscript(ctx context.Context, email, name string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	w.mu.Lock()
	req := TranscriptRequest{
		Email:          email,
		Name:           strings.TrimSpace(name),
		Messages:       append([]domain.Message(nil), w.messages...),
		ConversationID: w.conversationID,
	}
	w.mu.Unlock()

	if err := w.api.SendTranscript(ctx, req); err != nil {
		return err
	}
	w.mu.Lock()
	w.email = EmailSubmitted
	w.mu.Unlock()
	return nil
}

func (w *Widget) DismissEmail() {
	w.mu.Lock()
	w.email = EmailDismissed
	w.mu.Unlock()
}
