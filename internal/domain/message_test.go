package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func raw(role, content string) RawMessage {
	return RawMessage{Role: json.RawMessage(role), Content: json.RawMessage(content)}
}

func TestNormalizeCoercesRoles(t *testing.T) {
	tests := []struct {
		name string
		role string
		want Role
	}{
		{"user", `"user"`, RoleUser},
		{"assistant", `"assistant"`, RoleAssistant},
		{"system falls back", `"system"`, RoleAssistant},
		{"number falls back", `7`, RoleAssistant},
		{"missing falls back", ``, RoleAssistant},
		{"uppercase is not user", `"USER"`, RoleAssistant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]RawMessage{raw(tt.role, `"hi"`)})
			if got[0].Role != tt.want {
				t.Fatalf("role = %q, want %q", got[0].Role, tt.want)
			}
		})
	}
}

func TestNormalizeStringifiesContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"string", `"hello"`, "hello"},
		{"number", `42`, "42"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
		{"missing", ``, ""},
		{"object", `{ "a": 1 }`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]RawMessage{raw(`"user"`, tt.content)})
			if got[0].Content != tt.want {
				t.Fatalf("content = %q, want %q", got[0].Content, tt.want)
			}
		})
	}
}

func TestNormalizeTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", MaxContentLength+500)
	b, _ := json.Marshal(long)
	got := Normalize([]RawMessage{raw(`"user"`, string(b))})
	if n := len([]rune(got[0].Content)); n != MaxContentLength {
		t.Fatalf("length = %d, want %d", n, MaxContentLength)
	}

	short := strings.Repeat("b", MaxContentLength)
	b, _ = json.Marshal(short)
	got = Normalize([]RawMessage{raw(`"user"`, string(b))})
	if got[0].Content != short {
		t.Fatal("content at the limit must be untouched")
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	s := strings.Repeat("é", 5)
	if got := Truncate(s, 3); got != "ééé" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	got := Normalize([]RawMessage{
		raw(`"user"`, `"one"`),
		raw(`"assistant"`, `"two"`),
		raw(`"user"`, `"three"`),
	})
	want := []string{"one", "two", "three"}
	for i, m := range got {
		if m.Content != want[i] {
			t.Fatalf("message %d = %q, want %q", i, m.Content, want[i])
		}
	}
}

func TestShouldPromptEmail(t *testing.T) {
	user := Message{Role: RoleUser, Content: "q"}
	bot := Message{Role: RoleAssistant, Content: "a"}
	tests := []struct {
		name    string
		history []Message
		want    bool
	}{
		{"empty", nil, false},
		{"two users", []Message{user, bot, user}, false},
		{"three users", []Message{user, bot, user, bot, user}, true},
		{"many assistants", []Message{bot, bot, bot, bot, user}, false},
		{"four users", []Message{user, user, user, user}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldPromptEmail(tt.history); got != tt.want {
				t.Fatalf("ShouldPromptEmail = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewConversationID(t *testing.T) {
	if got := NewConversationID("conv_existing"); got != "conv_existing" {
		t.Fatalf("existing id replaced: %q", got)
	}
	a, b := NewConversationID(""), NewConversationID("")
	if !strings.HasPrefix(a, "conv_") || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}
