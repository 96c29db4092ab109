package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ask-mark/internal/domain"
)

// API is the service the widget talks to.
type API interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Subscribe(ctx context.Context, req SubscribeRequest) error
	SendTranscript(ctx context.Context, req TranscriptRequest) error
}

type ChatRequest struct {
	Messages       []domain.Message `json:"messages"`
	ConversationID string           `json:"conversationId,omitempty"`
}

type ChatResponse struct {
	Message           string `json:"message"`
	ConversationID    string `json:"conversationId"`
	ShouldPromptEmail bool   `json:"shouldPromptEmail"`
	Usage             struct {
		InputTokens  int `json:"inputTokens"`
		OutputTokens int `json:"outputTokens"`
	} `json:"usage"`
}

type SubscribeRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

type TranscriptRequest struct {
	Email          string           `json:"email"`
	Name           string           `json:"name,omitempty"`
	Messages       []domain.Message `json:"messages"`
	ConversationID string           `json:"conversationId,omitempty"`
}

// ServerError carries the "error" field of a non-2xx answer.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// HTTPClient calls the service's JSON endpoints.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.post(ctx, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, req SubscribeRequest) error {
	return c.post(ctx, "/api/subscribe", req, nil)
}

func (c *HTTPClient) SendTranscript(ctx context.Context, req TranscriptRequest) error {
	return c.post(ctx, "/api/send-transcript", req, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return &ServerError{Status: resp.StatusCode, Message: eb.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// ErrorText is what the widget shows for err.
func ErrorText(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return GenericError
}
