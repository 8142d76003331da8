package api

import (
	"context"
	"net/http"

	"github.com/kiyo9w/Imacall-backend/ai"
	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/internal/service"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsInbound is a frame sent by the client
type wsInbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// wsOutbound is a frame sent to the client
type wsOutbound struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHandler streams conversation messages over a WebSocket. Authentication
// happens in the JWT middleware before the upgrade, using the token query
// parameter.
type WSHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(service *service.ConversationService, logger *logger.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
	}
}

// Chat upgrades the connection and relays messages for one conversation.
// For each inbound text frame the client receives: an acknowledgment of the
// stored user message, a typing indicator, the AI (or fallback) reply, and
// the typing indicator clearing.
func (h *WSHandler) Chat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	conversationID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// Verify ownership before upgrading so unauthorized clients get a
	// plain HTTP error instead of a dangling socket
	if _, err := h.service.GetOwned(conversationID, userID); err != nil {
		switch err {
		case service.ErrConversationNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case service.ErrNotConversationOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this conversation"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket conversation opened",
		"conversationID", conversationID,
		"userID", userID,
	)

	for {
		var frame wsInbound
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err.Error())
			}
			return
		}

		if frame.Type != "text" {
			h.writeError(conn, "UNSUPPORTED_TYPE", "Only text frames are supported")
			continue
		}
		if frame.Content == "" || len(frame.Content) > models.MaxMessageContentLength {
			h.writeError(conn, "INVALID_CONTENT", "Message content is required and limited to 5000 characters")
			continue
		}

		conversation, userMessage, err := h.service.AppendUserMessage(conversationID, userID, frame.Content)
		if err != nil {
			h.writeError(conn, "SEND_FAILED", "Failed to store message")
			continue
		}

		if err := conn.WriteJSON(wsOutbound{Type: "message", Data: userMessage.ToResponse()}); err != nil {
			return
		}
		if err := conn.WriteJSON(wsOutbound{Type: "typing", Data: gin.H{"is_typing": true}}); err != nil {
			return
		}

		aiMessage, err := h.service.GenerateReply(context.Background(), conversation)
		if err != nil {
			switch err {
			case ai.ErrGenerationUnavailable:
				h.writeError(conn, "GENERATION_UNAVAILABLE", "The character could not respond right now. Please try again.")
			case ai.ErrNotConfigured:
				h.writeError(conn, "NOT_CONFIGURED", "No AI provider is configured")
			default:
				h.logger.Error("WebSocket reply generation failed", "error", err.Error())
				h.writeError(conn, "SEND_FAILED", "Failed to generate reply")
			}
			_ = conn.WriteJSON(wsOutbound{Type: "typing", Data: gin.H{"is_typing": false}})
			continue
		}

		if err := conn.WriteJSON(wsOutbound{Type: "message", Data: aiMessage.ToResponse()}); err != nil {
			return
		}
		if err := conn.WriteJSON(wsOutbound{Type: "typing", Data: gin.H{"is_typing": false}}); err != nil {
			return
		}
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, code, message string) {
	_ = conn.WriteJSON(wsOutbound{
		Type: "error",
		Data: gin.H{"code": code, "message": message},
	})
}
