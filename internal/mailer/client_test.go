package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ask-mark/internal/domain"
)

func TestSendPostsEmail(t *testing.T) {
	var got Email
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Header.Get("Authorization") != "Bearer key" {
			http.Error(w, "bad request", http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "key", From: "Ask Mark <mark@example.com>", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	id, err := client.Send(context.Background(), Email{To: []string{"user@example.com"}, Subject: "s", Text: "t"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "msg_1" {
		t.Fatalf("id = %q", id)
	}
	if got.From != "Ask Mark <mark@example.com>" || got.To[0] != "user@example.com" || got.Subject != "s" {
		t.Fatalf("unexpected email %+v", got)
	}
}

func TestSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client, _ := NewClient(Config{APIKey: "key", From: "a@b.co", BaseURL: server.URL})
	_, err := client.Send(context.Background(), Email{To: []string{"user@example.com"}})
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	client, _ := NewClient(Config{APIKey: "key", From: "a@b.co"})
	if _, err := client.Send(context.Background(), Email{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	for _, cfg := range []Config{{}, {APIKey: "k"}, {From: "a@b.co"}} {
		if _, err := NewClient(cfg); !errors.Is(err, domain.ErrServiceUnconfigured) {
			t.Fatalf("NewClient(%+v) err = %v", cfg, err)
		}
	}
}
