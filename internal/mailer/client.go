package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ask-mark/internal/domain"
)

const (
	defaultBaseURL = "https://api.resend.com"
	defaultTimeout = 15 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string
	From       string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Email is one outgoing message. From defaults to the client's sender.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Client sends mail through the Resend HTTP API.
type Client struct {
	http   *http.Client
	apiKey string
	base   string
	from   string
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail api key and sender: %w", domain.ErrServiceUnconfigured)
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
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
		http:   client,
		apiKey: cfg.APIKey,
		base:   strings.TrimRight(base, "/"),
		from:   cfg.From,
	}, nil
}

// Send delivers one email and returns the provider's message id.
func (c *Client) Send(ctx context.Context, email Email) (string, error) {
	if email.From == "" {
		email.From = c.from
	}
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipient")
	}
	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w: %w", err, domain.ErrUpstreamFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("mail api returned status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrUpstreamFailure)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return "", fmt.Errorf("decode mail response: %w: %w", err, domain.ErrUpstreamFailure)
	}
	return out.ID, nil
}
