package service

import (
	"context"
	"errors"
	"time"

	"github.com/kiyo9w/Imacall-backend/ai"
	"github.com/kiyo9w/Imacall-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrNotConversationOwner  = errors.New("user does not own this conversation")
	ErrApprovedCharacterOnly = errors.New("approved character not found")
)

// ConversationService handles chat sessions and message exchange. Reply
// generation is delegated to the AI generator; this service owns all
// persistence around it.
type ConversationService struct {
	db         *gorm.DB
	characters *CharacterService
	generator  *ai.Generator
}

// NewConversationService creates a new conversation service
func NewConversationService(db *gorm.DB, characters *CharacterService, generator *ai.Generator) *ConversationService {
	return &ConversationService{
		db:         db,
		characters: characters,
		generator:  generator,
	}
}

// Start opens a conversation with an approved character. When the character
// defines a greeting message it is inserted as the first AI message.
func (s *ConversationService) Start(userID uuid.UUID, req *models.CreateConversationRequest) (*models.Conversation, error) {
	character, err := s.characters.GetByID(req.CharacterID)
	if err != nil {
		if errors.Is(err, ErrCharacterNotFound) {
			return nil, ErrApprovedCharacterOnly
		}
		return nil, err
	}
	if character.Status != models.CharacterStatusApproved {
		return nil, ErrApprovedCharacterOnly
	}

	conversation := models.Conversation{
		UserID:      userID,
		CharacterID: character.ID,
		Title:       req.Title,
	}
	if conversation.Title == "" {
		conversation.Title = "Chat with " + character.Name
	}

	if err := s.db.Create(&conversation).Error; err != nil {
		return nil, err
	}

	if character.GreetingMessage != "" {
		greeting := models.Message{
			ConversationID: conversation.ID,
			Sender:         models.SenderAI,
			Content:        character.GreetingMessage,
		}
		if err := s.db.Create(&greeting).Error; err != nil {
			return nil, err
		}
	}

	if err := s.characters.IncrementPopularity(character.ID); err != nil {
		return nil, err
	}

	conversation.Character = character
	return &conversation, nil
}

// ListForUser returns the user's conversations, most recently active first
func (s *ConversationService) ListForUser(userID uuid.UUID, skip, limit int) ([]models.Conversation, int64, error) {
	query := s.db.Model(&models.Conversation{}).Where("user_id = ?", userID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var conversations []models.Conversation
	err := query.
		Preload("Character").
		Order("last_interaction_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}

	return conversations, count, nil
}

// GetOwned returns a conversation only when userID owns it
func (s *ConversationService) GetOwned(id, userID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	result := s.db.Preload("Character").First(&conversation, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, result.Error
	}
	if conversation.UserID != userID {
		return nil, ErrNotConversationOwner
	}
	return &conversation, nil
}

// Messages returns a conversation's messages in chronological order
func (s *ConversationService) Messages(id, userID uuid.UUID, skip, limit int) ([]models.Message, int64, error) {
	if _, err := s.GetOwned(id, userID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Message{}).Where("conversation_id = ?", id)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 500 {
		limit = 500
	}

	var messages []models.Message
	err := query.Order("created_at ASC").Offset(skip).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, count, nil
}

// SendMessage persists the user's message, generates the character's reply
// and persists it. The user message is kept even when generation fails, so
// the client can retry without losing input.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, userID uuid.UUID, content string) (*models.Message, error) {
	conversation, _, err := s.AppendUserMessage(conversationID, userID, content)
	if err != nil {
		return nil, err
	}
	return s.GenerateReply(ctx, conversation)
}

// AppendUserMessage validates ownership and persists one user message.
// The WebSocket handler uses this directly so it can acknowledge the user
// turn before the reply is ready.
func (s *ConversationService) AppendUserMessage(conversationID, userID uuid.UUID, content string) (*models.Conversation, *models.Message, error) {
	conversation, err := s.GetOwned(conversationID, userID)
	if err != nil {
		return nil, nil, err
	}

	userMessage := models.Message{
		ConversationID: conversationID,
		Sender:         models.SenderUser,
		Content:        content,
	}
	if err := s.db.Create(&userMessage).Error; err != nil {
		return nil, nil, err
	}

	return conversation, &userMessage, nil
}

// GenerateReply produces and persists the character's answer to the latest
// user message in the conversation
func (s *ConversationService) GenerateReply(ctx context.Context, conversation *models.Conversation) (*models.Message, error) {
	character := conversation.Character
	if character == nil {
		var err error
		character, err = s.characters.GetByID(conversation.CharacterID)
		if err != nil {
			return nil, err
		}
	}

	turns, err := s.recentTurns(conversation.ID)
	if err != nil {
		return nil, err
	}

	// The trailing user turn travels as the prompt, not as history
	userContent := ""
	if n := len(turns); n > 0 && turns[n-1].Role == "user" {
		userContent = turns[n-1].Content
		turns = turns[:n-1]
	}

	reply, err := s.generator.Generate(ctx, profileFromCharacter(character), turns, userContent)
	if err != nil {
		return nil, err
	}

	aiMessage := models.Message{
		ConversationID: conversation.ID,
		Sender:         models.SenderAI,
		Content:        reply,
	}
	if err := s.db.Create(&aiMessage).Error; err != nil {
		return nil, err
	}

	s.db.Model(&models.Conversation{}).
		Where("id = ?", conversation.ID).
		Update("last_interaction_at", time.Now())

	return &aiMessage, nil
}

// Delete removes a conversation and its messages. Deleting a missing
// conversation is a no-op so the operation is idempotent.
func (s *ConversationService) Delete(id, userID uuid.UUID) error {
	var conversation models.Conversation
	result := s.db.First(&conversation, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return result.Error
	}
	if conversation.UserID != userID {
		return ErrNotConversationOwner
	}

	if err := s.db.Delete(&models.Message{}, "conversation_id = ?", id).Error; err != nil {
		return err
	}
	return s.db.Delete(&models.Conversation{}, "id = ?", id).Error
}

// recentTurns loads the conversation history as generator turns, oldest
// first. The generator applies its own window on top.
func (s *ConversationService) recentTurns(conversationID uuid.UUID) ([]ai.Turn, error) {
	var messages []models.Message
	err := s.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	turns := make([]ai.Turn, 0, len(messages))
	for _, msg := range messages {
		role := "assistant"
		if msg.Sender == models.SenderUser {
			role = "user"
		}
		turns = append(turns, ai.Turn{Role: role, Content: msg.Content})
	}
	return turns, nil
}

func profileFromCharacter(c *models.Character) ai.Profile {
	return ai.Profile{
		Name:              c.Name,
		Description:       c.Description,
		Scenario:          c.Scenario,
		PersonalityTraits: c.PersonalityTraits,
		WritingStyle:      c.WritingStyle,
		Background:        c.Background,
		KnowledgeScope:    c.KnowledgeScope,
		Quirks:            c.Quirks,
		EmotionalRange:    c.EmotionalRange,
		Language:          c.Language,
		GreetingMessage:   c.GreetingMessage,
		FallbackResponse:  c.FallbackResponse,
	}
}
