package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Message is a JSON payload keyed by ID. Tag is used for consumer-side filtering.
type Message struct {
	ID      string
	Tag     string
	Payload []byte
}

// NewMessage encodes v as JSON. An empty id gets a fresh uuid.
func NewMessage(id, tag string, v any) (Message, error) {
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("encode message %s: %w", id, err)
	}
	return Message{ID: id, Tag: tag, Payload: payload}, nil
}
