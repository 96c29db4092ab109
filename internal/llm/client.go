package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ask-mark/internal/domain"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
	apiVersion       = "2023-06-01"

	// statusOverloaded is returned by the API when it has no capacity.
	statusOverloaded = 529
)

// Config configures the completion Client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the Anthropic Messages API.
type Client struct {
	http      *http.Client
	apiKey    string
	base      string
	model     string
	maxTokens int
}

// CompletionRequest is a system prompt plus the conversation so far.
type CompletionRequest struct {
	System   string
	Messages []domain.Message
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Completion holds the reply text and token usage of one call.
type Completion struct {
	Text  string
	Usage Usage
}

// APIError is a non-2xx answer from the completion service.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("completion api status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("completion api status %d: %s", e.StatusCode, e.Message)
}

// Is maps capacity failures to ErrUpstreamOverload and everything else to ErrUpstreamFailure.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUpstreamOverload:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == statusOverloaded
	case domain.ErrUpstreamFailure:
		return e.StatusCode != http.StatusTooManyRequests && e.StatusCode != statusOverloaded
	}
	return false
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("completion api key: %w", domain.ErrServiceUnconfigured)
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:      client,
		apiKey:    cfg.APIKey,
		base:      strings.TrimRight(base, "/"),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends one non-streaming request. It never retries.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("at least one message must be provided")
	}

	body := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    req.System,
		Messages:  make([]wireMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w: %w", err, domain.ErrUpstreamFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", err, domain.ErrUpstreamFailure)
	}
	return &Completion{Text: out.firstText(), Usage: out.Usage}, nil
}

func (c *Client) Model() string { return c.model }

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		apiErr.Type = env.Error.Type
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []wireMessage `json:"messages"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   Usage          `json:"usage"`
}

func (r messagesResponse) firstText() string {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
