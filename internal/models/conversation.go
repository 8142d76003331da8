package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a chat session between a user and a character
type Conversation struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	CharacterID       uuid.UUID `gorm:"type:uuid;index" json:"character_id"`
	Title             string    `json:"title,omitempty"`
	LastInteractionAt time.Time `gorm:"index" json:"last_interaction_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Character *Character `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
	Messages  []Message  `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// BeforeCreate assigns an ID and stamps the first interaction
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.LastInteractionAt.IsZero() {
		c.LastInteractionAt = time.Now()
	}
	return nil
}

// CreateConversationRequest starts a conversation with a character
type CreateConversationRequest struct {
	CharacterID uuid.UUID `json:"character_id" binding:"required"`
	Title       string    `json:"title"`
}

// ConversationResponse is the API representation of a conversation
type ConversationResponse struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"user_id"`
	CharacterID       uuid.UUID          `json:"character_id"`
	Title             string             `json:"title,omitempty"`
	LastInteractionAt time.Time          `json:"last_interaction_at"`
	CreatedAt         time.Time          `json:"created_at"`
	Character         *CharacterResponse `json:"character,omitempty"`
}

// ToResponse converts a Conversation to its API representation
func (c *Conversation) ToResponse() ConversationResponse {
	resp := ConversationResponse{
		ID:                c.ID,
		UserID:            c.UserID,
		CharacterID:       c.CharacterID,
		Title:             c.Title,
		LastInteractionAt: c.LastInteractionAt,
		CreatedAt:         c.CreatedAt,
	}
	if c.Character != nil {
		char := c.Character.ToResponse()
		resp.Character = &char
	}
	return resp
}
