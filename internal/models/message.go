package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageSender identifies who authored a message
type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderAI   MessageSender = "ai"
)

// MaxMessageContentLength caps the size of a single message
const MaxMessageContentLength = 5000

// Message is a single turn in a conversation
type Message struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;index" json:"conversation_id"`
	Sender         MessageSender `gorm:"size:10;not null" json:"sender"`
	Content        string        `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns an ID
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SendMessageRequest is the request structure for posting a user message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// MessageResponse is the API representation of a message
type MessageResponse struct {
	ID             uuid.UUID     `json:"id"`
	ConversationID uuid.UUID     `json:"conversation_id"`
	Sender         MessageSender `json:"sender"`
	Content        string        `json:"content"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ToResponse converts a Message to its API representation
func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
