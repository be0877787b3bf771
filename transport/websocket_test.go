package transport

import (
	"context"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type receivedFrame struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

func listen(t *testing.T, s *testServer) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(listener) }()
	t.Cleanup(func() { _ = s.app.Shutdown() })
	return listener.Addr().String()
}

func dial(t *testing.T, address, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+address+"/ws?token="+token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, action, channel string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(clientFrame{Action: action, Channel: channel}))
}

func next(t *testing.T, conn *websocket.Conn) receivedFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame receivedFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebsocket_Delivers_Events_To_Partner(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	s.orchestrator.Start(context.Background())
	address := listen(t, s)

	alice, aliceToken := s.createUser(t, "alice")
	bob, bobToken := s.createUser(t, "bob")
	_, err := s.contacts.AddContact(alice.ID, bob.ID, time.Now())
	req.NoError(err)

	bobConn := dial(t, address, bobToken)

	// Bob cannot listen on somebody else's start channel
	send(t, bobConn, actionSubscribe, event.ChatStartChannel(alice.ID))
	frame := next(t, bobConn)
	req.Equal(frameError, frame.Type)
	req.Contains(frame.Message, "not authorized")

	send(t, bobConn, actionSubscribe, event.ChatStartChannel(bob.ID))
	frame = next(t, bobConn)
	req.Equal(frameSubscribed, frame.Type)

	// When Alice opens a chat with him
	status, raw := s.do(t, http.MethodPost, "/chat/start", aliceToken, fiber.Map{"email": bob.Email})
	req.Equal(http.StatusOK, status)
	var started startChatResponse
	req.NoError(json.Unmarshal(raw, &started))

	// Then Bob is told
	frame = next(t, bobConn)
	req.Equal(string(event.ChatStartedType), frame.Type)
	var startedPayload chatStartedPayload
	req.NoError(json.Unmarshal(frame.Payload, &startedPayload))
	req.Equal(started.ChatID, startedPayload.Chat.ID)
	req.Equal(alice.ID, startedPayload.Chat.UserOne)

	// And once subscribed to the chat he receives her messages
	send(t, bobConn, actionSubscribe, event.ChatChannel(started.ChatID))
	req.Equal(frameSubscribed, next(t, bobConn).Type)

	status, _ = s.do(t, http.MethodPost, "/chat/message", aliceToken, fiber.Map{"chat_id": started.ChatID, "message": "hi"})
	req.Equal(http.StatusOK, status)

	frame = next(t, bobConn)
	req.Equal(string(event.MessageSentType), frame.Type)
	req.Equal(event.ChatChannel(started.ChatID), frame.Channel)
	var sent messagePayload
	req.NoError(json.Unmarshal(frame.Payload, &sent))
	req.Equal("hi", sent.Message.Body)
	req.Equal(alice.ID, sent.Message.AuthorID)

	// Unsubscribing is acknowledged
	send(t, bobConn, actionUnsubscribe, event.ChatChannel(started.ChatID))
	req.Equal(frameUnsubscribed, next(t, bobConn).Type)
}

func TestWebsocket_Actor_Does_Not_Receive_Own_Events(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	s.orchestrator.Start(context.Background())
	address := listen(t, s)

	alice, aliceToken := s.createUser(t, "alice")
	_, bobToken := s.createUser(t, "bob")
	aliceConn := dial(t, address, aliceToken)
	bobConn := dial(t, address, bobToken)

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		send(t, conn, actionSubscribe, event.PresenceChannel)
		req.Equal(frameSubscribed, next(t, conn).Type)
	}

	// When Alice goes away
	status, _ := s.do(t, http.MethodPatch, "/user-status", aliceToken, fiber.Map{"status": "away"})
	req.Equal(http.StatusNoContent, status)

	// Then Bob sees it
	frame := next(t, bobConn)
	req.Equal(string(event.UserStatusChangeType), frame.Type)
	var presence userStatusPayload
	req.NoError(json.Unmarshal(frame.Payload, &presence))
	req.Equal(alice.ID, presence.UserID)
	req.Equal(domain.StatusAway, presence.Status)

	// And Alice gets nothing back
	req.NoError(aliceConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	_, _, err := aliceConn.ReadMessage()
	req.Error(err)
}

func TestWebsocket_Rejects_Malformed_Frames(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	address := listen(t, s)
	_, token := s.createUser(t, "alice")
	conn := dial(t, address, token)

	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	req.Equal(frameError, next(t, conn).Type)

	send(t, conn, "shout", event.PresenceChannel)
	req.Equal(frameError, next(t, conn).Type)

	send(t, conn, actionSubscribe, "room.1")
	req.Equal(frameError, next(t, conn).Type)
}

func TestWebsocket_Requires_Token(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	address := listen(t, s)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+address+"/ws", nil)
	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}
