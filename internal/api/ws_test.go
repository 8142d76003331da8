package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiyo9w/Imacall-backend/internal/models"
	"github.com/kiyo9w/Imacall-backend/pkg/jwt"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type wsFrame struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func dialWS(t *testing.T, server *httptest.Server, conversationID, token string) *websocket.Conn {
	t.Helper()

	url := strings.Replace(server.URL, "http://", "ws://", 1) +
		"/api/v1/conversations/ws/" + conversationID + "?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocketChatFrameSequence(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, token := env.newUser(t, "chatter@example.com", jwt.RoleUser)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusApproved)
	env.adapter.reply = "A pleasure to meet you."

	rec := env.do(t, http.MethodPost, "/api/v1/conversations", token, map[string]string{
		"character_id": character.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conversationID := decodeJSON(t, rec)["id"].(string)

	server := httptest.NewServer(env.engine)
	defer server.Close()

	conn := dialWS(t, server, conversationID, token)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":    "text",
		"content": "Hello over the wire",
	}))

	// Stored user message comes back first
	frame := readFrame(t, conn)
	require.Equal(t, "message", frame.Type)
	require.Equal(t, "user", frame.Data["sender"])
	require.Equal(t, "Hello over the wire", frame.Data["content"])

	frame = readFrame(t, conn)
	require.Equal(t, "typing", frame.Type)
	require.Equal(t, true, frame.Data["is_typing"])

	frame = readFrame(t, conn)
	require.Equal(t, "message", frame.Type)
	require.Equal(t, "ai", frame.Data["sender"])
	require.Equal(t, "A pleasure to meet you.", frame.Data["content"])

	frame = readFrame(t, conn)
	require.Equal(t, "typing", frame.Type)
	require.Equal(t, false, frame.Data["is_typing"])
}

func TestWebSocketRejectsUnsupportedFrames(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, token := env.newUser(t, "chatter@example.com", jwt.RoleUser)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusApproved)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations", token, map[string]string{
		"character_id": character.ID.String(),
	})
	conversationID := decodeJSON(t, rec)["id"].(string)

	server := httptest.NewServer(env.engine)
	defer server.Close()

	conn := dialWS(t, server, conversationID, token)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "audio", "content": "x"}))
	frame := readFrame(t, conn)
	require.Equal(t, "error", frame.Type)
	require.Equal(t, "UNSUPPORTED_TYPE", frame.Data["code"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "text", "content": ""}))
	frame = readFrame(t, conn)
	require.Equal(t, "error", frame.Type)
	require.Equal(t, "INVALID_CONTENT", frame.Data["code"])
}

func TestWebSocketRejectsBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)
	creator, _ := env.newUser(t, "creator@example.com", jwt.RoleUser)
	_, ownerToken := env.newUser(t, "owner@example.com", jwt.RoleUser)
	_, strangerToken := env.newUser(t, "stranger@example.com", jwt.RoleUser)

	character := env.newCharacter(t, creator.ID, models.CharacterStatusApproved)

	rec := env.do(t, http.MethodPost, "/api/v1/conversations", ownerToken, map[string]string{
		"character_id": character.ID.String(),
	})
	conversationID := decodeJSON(t, rec)["id"].(string)

	server := httptest.NewServer(env.engine)
	defer server.Close()

	base := strings.Replace(server.URL, "http://", "ws://", 1) + "/api/v1/conversations/ws/" + conversationID

	// Missing token fails during the handshake
	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A stranger's token is rejected before the upgrade
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+strangerToken, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
