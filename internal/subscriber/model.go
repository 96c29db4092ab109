package subscriber

import (
	"time"
)

type Source string

const (
	SourceSubscribe  Source = "subscribe"
	SourceTranscript Source = "transcript"
)

// Subscriber is one captured email address.
type Subscriber struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email          string    `json:"email" gorm:"index;size:320;not null"`
	Name           string    `json:"name" gorm:"size:255"`
	ConversationID string    `json:"conversation_id" gorm:"size:64"`
	Source         Source    `json:"source" gorm:"size:32;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}

// Event is published for every captured address.
type Event struct {
	ID             string    `json:"id"`
	Type           Source    `json:"type"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
