package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CharacterStatus is the review state of a submitted character
type CharacterStatus string

const (
	CharacterStatusPending  CharacterStatus = "pending"
	CharacterStatusApproved CharacterStatus = "approved"
	CharacterStatusRejected CharacterStatus = "rejected"
)

// TagList stores a list of tags as a JSON text column. It also accepts a
// comma-separated string on input, which older clients still send.
type TagList []string

// Scan implements sql.Scanner
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported tag list type %T", value)
	}

	if len(raw) == 0 {
		*t = nil
		return nil
	}

	return json.Unmarshal(raw, t)
}

// Value implements driver.Valuer
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// UnmarshalJSON accepts either a JSON array or a comma-separated string
func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = normalizeTags(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags must be an array of strings or a comma-separated string")
	}
	*t = normalizeTags(strings.Split(joined, ","))
	return nil
}

func normalizeTags(in []string) TagList {
	out := make(TagList, 0, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Character represents an AI character profile. Characters are submitted by
// users, reviewed by admins, and only approved public characters are
// discoverable by other users.
type Character struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID       uuid.UUID       `gorm:"type:uuid;index" json:"creator_id"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	ImageURL        string          `json:"image_url,omitempty"`
	GreetingMessage string          `gorm:"type:text" json:"greeting_message,omitempty"`
	Scenario        string          `gorm:"type:text" json:"scenario,omitempty"`
	Category        string          `gorm:"index" json:"category,omitempty"`
	Language        string          `json:"language,omitempty"`
	Tags            TagList         `gorm:"type:text" json:"tags,omitempty"`
	VoiceID         string          `json:"voice_id,omitempty"`

	// Persona fields assembled into the system prompt
	PersonalityTraits string `gorm:"type:text" json:"personality_traits,omitempty"`
	WritingStyle      string `gorm:"type:text" json:"writing_style,omitempty"`
	Background        string `gorm:"type:text" json:"background,omitempty"`
	KnowledgeScope    string `gorm:"type:text" json:"knowledge_scope,omitempty"`
	Quirks            string `gorm:"type:text" json:"quirks,omitempty"`
	EmotionalRange    string `gorm:"type:text" json:"emotional_range,omitempty"`

	// FallbackResponse is returned verbatim when the AI provider fails
	FallbackResponse string `gorm:"type:text" json:"fallback_response,omitempty"`

	Status          CharacterStatus `gorm:"index;default:pending" json:"status"`
	AdminFeedback   string          `gorm:"type:text" json:"admin_feedback,omitempty"`
	IsPublic        bool            `gorm:"default:true" json:"is_public"`
	IsFeatured      bool            `gorm:"default:false" json:"is_featured"`
	PopularityScore int             `gorm:"default:0;index" json:"popularity_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an ID and defaults the review status
func (c *Character) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CharacterStatusPending
	}
	return nil
}

// CreateCharacterRequest is the request structure for submitting a character
type CreateCharacterRequest struct {
	Name              string  `json:"name" binding:"required,max=100"`
	Description       string  `json:"description" binding:"required"`
	ImageURL          string  `json:"image_url"`
	GreetingMessage   string  `json:"greeting_message"`
	Scenario          string  `json:"scenario"`
	Category          string  `json:"category"`
	Language          string  `json:"language"`
	Tags              TagList `json:"tags"`
	VoiceID           string  `json:"voice_id"`
	PersonalityTraits string  `json:"personality_traits"`
	WritingStyle      string  `json:"writing_style"`
	Background        string  `json:"background"`
	KnowledgeScope    string  `json:"knowledge_scope"`
	Quirks            string  `json:"quirks"`
	EmotionalRange    string  `json:"emotional_range"`
	FallbackResponse  string  `json:"fallback_response"`
	IsPublic          *bool   `json:"is_public"`
}

// UpdateCharacterRequest is the request structure for editing a character.
// Pointer fields distinguish "not provided" from "set to empty".
type UpdateCharacterRequest struct {
	Name              *string  `json:"name" binding:"omitempty,max=100"`
	Description       *string  `json:"description"`
	ImageURL          *string  `json:"image_url"`
	GreetingMessage   *string  `json:"greeting_message"`
	Scenario          *string  `json:"scenario"`
	Category          *string  `json:"category"`
	Language          *string  `json:"language"`
	Tags              *TagList `json:"tags"`
	VoiceID           *string  `json:"voice_id"`
	PersonalityTraits *string  `json:"personality_traits"`
	WritingStyle      *string  `json:"writing_style"`
	Background        *string  `json:"background"`
	KnowledgeScope    *string  `json:"knowledge_scope"`
	Quirks            *string  `json:"quirks"`
	EmotionalRange    *string  `json:"emotional_range"`
	FallbackResponse  *string  `json:"fallback_response"`
	IsPublic          *bool    `json:"is_public"`
	IsFeatured        *bool    `json:"is_featured"`
}

// ReviewCharacterRequest carries optional admin feedback for approve/reject
type ReviewCharacterRequest struct {
	AdminFeedback string `json:"admin_feedback"`
}

// CharacterResponse is the public view of a character. Moderation fields
// (admin feedback, fallback response) are only visible to the creator and
// admins through CharacterDetailResponse.
type CharacterResponse struct {
	ID                uuid.UUID       `json:"id"`
	CreatorID         uuid.UUID       `json:"creator_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"image_url,omitempty"`
	GreetingMessage   string          `json:"greeting_message,omitempty"`
	Scenario          string          `json:"scenario,omitempty"`
	Category          string          `json:"category,omitempty"`
	Language          string          `json:"language,omitempty"`
	Tags              TagList         `json:"tags,omitempty"`
	VoiceID           string          `json:"voice_id,omitempty"`
	PersonalityTraits string          `json:"personality_traits,omitempty"`
	WritingStyle      string          `json:"writing_style,omitempty"`
	IsPublic          bool            `json:"is_public"`
	IsFeatured        bool            `json:"is_featured"`
	PopularityScore   int             `json:"popularity_score"`
	Status            CharacterStatus `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CharacterDetailResponse is the owner/admin view including moderation fields
type CharacterDetailResponse struct {
	CharacterResponse
	Background       string `json:"background,omitempty"`
	KnowledgeScope   string `json:"knowledge_scope,omitempty"`
	Quirks           string `json:"quirks,omitempty"`
	EmotionalRange   string `json:"emotional_range,omitempty"`
	FallbackResponse string `json:"fallback_response,omitempty"`
	AdminFeedback    string `json:"admin_feedback,omitempty"`
}

// ToResponse converts a Character to its public representation
func (c *Character) ToResponse() CharacterResponse {
	return CharacterResponse{
		ID:                c.ID,
		CreatorID:         c.CreatorID,
		Name:              c.Name,
		Description:       c.Description,
		ImageURL:          c.ImageURL,
		GreetingMessage:   c.GreetingMessage,
		Scenario:          c.Scenario,
		Category:          c.Category,
		Language:          c.Language,
		Tags:              c.Tags,
		VoiceID:           c.VoiceID,
		PersonalityTraits: c.PersonalityTraits,
		WritingStyle:      c.WritingStyle,
		IsPublic:          c.IsPublic,
		IsFeatured:        c.IsFeatured,
		PopularityScore:   c.PopularityScore,
		Status:            c.Status,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// ToDetailResponse converts a Character to its owner/admin representation
func (c *Character) ToDetailResponse() CharacterDetailResponse {
	return CharacterDetailResponse{
		CharacterResponse: c.ToResponse(),
		Background:        c.Background,
		KnowledgeScope:    c.KnowledgeScope,
		Quirks:            c.Quirks,
		EmotionalRange:    c.EmotionalRange,
		FallbackResponse:  c.FallbackResponse,
		AdminFeedback:     c.AdminFeedback,
	}
}
