package api

import (
	"net/http"

	"github.com/kiyo9w/Imacall-backend/ai"
	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/internal/service"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation and message endpoints
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(service *service.ConversationService, logger *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		logger:  logger,
	}
}

// Start opens a new conversation with an approved character
func (h *ConversationHandler) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	conversation, err := h.service.Start(userID, &req)
	if err != nil {
		switch err {
		case service.ErrApprovedCharacterOnly:
			c.JSON(http.StatusNotFound, gin.H{"error": "Approved character not found"})
		default:
			h.logger.Error("Error starting conversation", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start conversation"})
		}
		return
	}

	c.JSON(http.StatusCreated, conversation.ToResponse())
}

// List returns the current user's conversations
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	skip, limit := pagination(c)
	conversations, count, err := h.service.ListForUser(userID, skip, limit)
	if err != nil {
		h.logger.Error("Error listing conversations", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	data := make([]models.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		data = append(data, conversations[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "count": count})
}

// Messages returns a conversation's messages in chronological order
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	skip, limit := pagination(c)
	messages, count, err := h.service.Messages(id, userID, skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		data = append(data, messages[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "count": count})
}

// SendMessage posts a user message and returns the character's reply
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required and limited to 5000 characters"})
		return
	}

	aiMessage, err := h.service.SendMessage(c.Request.Context(), id, userID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, aiMessage.ToResponse())
}

// Delete removes one of the current user's conversations
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ConversationHandler) respondError(c *gin.Context, err error) {
	switch err {
	case service.ErrConversationNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	case service.ErrNotConversationOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this conversation"})
	case ai.ErrGenerationUnavailable:
		// Vendor detail stays in the logs, the client only learns the
		// reply could not be produced
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "The character could not respond right now. Please try again.",
			"code":  "GENERATION_UNAVAILABLE",
		})
	case ai.ErrNotConfigured:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "No AI provider is configured",
			"code":  "NOT_CONFIGURED",
		})
	default:
		h.logger.Error("Conversation operation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Conversation operation failed"})
	}
}
