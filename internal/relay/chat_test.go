package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ask-mark/internal/domain"
	"ask-mark/internal/llm"
)

type stubCompleter struct {
	calls int
	got   llm.CompletionRequest
	out   *llm.Completion
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	s.calls++
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func history(t *testing.T, pairs ...string) []domain.RawMessage {
	t.Helper()
	out := make([]domain.RawMessage, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		role, _ := json.Marshal(pairs[i])
		content, _ := json.Marshal(pairs[i+1])
		out = append(out, domain.RawMessage{Role: role, Content: content})
	}
	return out
}

func TestReplyShapesCompletion(t *testing.T) {
	stub := &stubCompleter{out: &llm.Completion{Text: "X", Usage: llm.Usage{InputTokens: 5, OutputTokens: 2}}}
	relay := NewChatRelay(stub, "persona", nil)

	reply, err := relay.Reply(context.Background(), ChatRequest{Messages: history(t, "user", "hi")})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply.Message != "X" || reply.Usage.InputTokens != 5 || reply.Usage.OutputTokens != 2 {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if !strings.HasPrefix(reply.ConversationID, "conv_") {
		t.Fatalf("conversation id = %q", reply.ConversationID)
	}
	if reply.ShouldPromptEmail {
		t.Fatal("one user message must not prompt for email")
	}
	if stub.got.System != "persona" {
		t.Fatalf("system = %q", stub.got.System)
	}
}

func TestReplyKeepsConversationID(t *testing.T) {
	stub := &stubCompleter{out: &llm.Completion{Text: "ok"}}
	reply, err := NewChatRelay(stub, "", nil).Reply(context.Background(), ChatRequest{
		Messages:       history(t, "user", "hi"),
		ConversationID: "conv_abc",
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply.ConversationID != "conv_abc" {
		t.Fatalf("conversation id = %q", reply.ConversationID)
	}
}

func TestReplyPromptsEmailAfterThreeUserTurns(t *testing.T) {
	stub := &stubCompleter{out: &llm.Completion{Text: "ok"}}
	relay := NewChatRelay(stub, "", nil)

	reply, _ := relay.Reply(context.Background(), ChatRequest{Messages: history(t,
		"user", "1", "assistant", "a", "user", "2", "assistant", "b", "user", "3")})
	if !reply.ShouldPromptEmail {
		t.Fatal("three user messages should prompt for email")
	}

	reply, _ = relay.Reply(context.Background(), ChatRequest{Messages: history(t,
		"user", "1", "assistant", "a", "bogus", "2", "user", "3")})
	if reply.ShouldPromptEmail {
		t.Fatal("coerced roles must not count as user messages")
	}
}

func TestReplyForwardsNormalizedHistory(t *testing.T) {
	stub := &stubCompleter{out: &llm.Completion{Text: "ok"}}
	long := strings.Repeat("x", 2500)

	_, err := NewChatRelay(stub, "", nil).Reply(context.Background(), ChatRequest{Messages: history(t,
		"user", long, "system", "short")})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	got := stub.got.Messages
	if len(got) != 2 {
		t.Fatalf("forwarded %d messages", len(got))
	}
	if len(got[0].Content) != domain.MaxContentLength {
		t.Fatalf("first message length = %d", len(got[0].Content))
	}
	if got[1].Role != domain.RoleAssistant || got[1].Content != "short" {
		t.Fatalf("unexpected second message %+v", got[1])
	}
}

func TestReplyRejectsEmptyHistoryWithoutUpstreamCall(t *testing.T) {
	stub := &stubCompleter{}
	_, err := NewChatRelay(stub, "", nil).Reply(context.Background(), ChatRequest{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "messages" {
		t.Fatalf("err = %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("upstream called %d times", stub.calls)
	}
}

func TestReplyUnconfigured(t *testing.T) {
	_, err := NewChatRelay(nil, "", nil).Reply(context.Background(), ChatRequest{Messages: history(t, "user", "hi")})
	if !errors.Is(err, domain.ErrServiceUnconfigured) {
		t.Fatalf("err = %v", err)
	}
}

func TestReplyPropagatesUpstreamErrors(t *testing.T) {
	for _, want := range []error{domain.ErrUpstreamOverload, domain.ErrUpstreamFailure} {
		stub := &stubCompleter{err: want}
		_, err := NewChatRelay(stub, "", nil).Reply(context.Background(), ChatRequest{Messages: history(t, "user", "hi")})
		if !errors.Is(err, want) {
			t.Fatalf("err = %v, want %v", err, want)
		}
		if stub.calls != 1 {
			t.Fatalf("expected a single attempt, got %d", stub.calls)
		}
	}
}
