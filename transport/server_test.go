package transport

import (
	"bytes"
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/runtime/workers"
	"direct-chat/services"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testSecret = "a_long_enough_test_secret"

type testServer struct {
	app          *fiber.App
	tokens       auth.TokenManager
	users        *repositories.UserRepository
	contacts     repositories.ContactRepository
	broker       *runtime.Broker
	orchestrator *runtime.Orchestrator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)

	users, err := repositories.NewUserRepository(db)
	req.NoError(err)
	chats, err := repositories.NewChatRepository(db)
	req.NoError(err)
	messages, err := repositories.NewMessageRepository(db, log, nil)
	req.NoError(err)
	contacts := repositories.NewContactRepository(db)

	registry := runtime.NewRegistry()
	broker := runtime.NewBroker(log, registry, runtime.NewChannelAuthorizer(chats), 100, 2)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond),
		registry, broker, time.Second)

	t.Cleanup(func() {
		orchestrator.Stop()
		_ = users.Close()
		_ = chats.Close()
		_ = messages.Close()
		_ = db.Close()
	})

	contactService := services.NewContactService(log, users, contacts)
	chatService := services.NewChatService(log, users, contacts, chats, messages, broker)
	presenceService := services.NewPresenceService(log, users, broker)
	tokens := auth.NewTokenManager(testSecret, "direct-chat", time.Hour)
	server := NewServer(log, tokens, Services{
		Home:     services.NewHomeService(contactService, chatService, presenceService),
		Contacts: contactService,
		Chats:    chatService,
		Messages: services.NewMessageService(log, users, chats, messages, nil, broker),
		Presence: presenceService,
	}, broker, Settings{ConnectionBufferSize: 16, PingInterval: time.Second, WriteTimeout: time.Second})

	return &testServer{
		app:          server.App(),
		tokens:       tokens,
		users:        users,
		contacts:     contacts,
		broker:       broker,
		orchestrator: orchestrator,
	}
}

func (s *testServer) createUser(t *testing.T, name string) (domain.User, string) {
	t.Helper()
	user, err := s.users.CreateUser(name, name+"@example.com", "", time.Now())
	require.NoError(t, err)
	token, err := s.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		r.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(r, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Message
}

func TestServer_Requires_Authentication(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodGet, "/", "", nil)
	req.Equal(http.StatusUnauthorized, status)
	req.NotEmpty(errorMessage(t, raw))

	status, _ = s.do(t, http.MethodGet, "/", "forged", nil)
	req.Equal(http.StatusUnauthorized, status)
}

func TestServer_Contact_And_Chat_Flow(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	alice, aliceToken := s.createUser(t, "alice")
	bob, bobToken := s.createUser(t, "bob")

	// Adding a contact
	status, raw := s.do(t, http.MethodPost, "/contact/store", aliceToken, fiber.Map{"contact_email": bob.Email})
	req.Equal(http.StatusCreated, status)
	req.Equal("Contact added successfully.", errorMessage(t, raw))

	status, raw = s.do(t, http.MethodPost, "/contact/store", aliceToken, fiber.Map{"contact_email": bob.Email})
	req.Equal(http.StatusConflict, status)
	req.Contains(errorMessage(t, raw), "you already have bob in your contact list")

	status, _ = s.do(t, http.MethodPost, "/contact/store", aliceToken, fiber.Map{"contact_email": alice.Email})
	req.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodPost, "/contact/store", aliceToken, fiber.Map{"contact_email": "ghost@example.com"})
	req.Equal(http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/contact/store", aliceToken, fiber.Map{})
	req.Equal(http.StatusUnprocessableEntity, status)

	// Starting a chat
	status, _ = s.do(t, http.MethodPost, "/chat/start", bobToken, fiber.Map{"email": alice.Email})
	req.Equal(http.StatusForbidden, status)

	status, raw = s.do(t, http.MethodPost, "/chat/start", aliceToken, fiber.Map{"email": bob.Email})
	req.Equal(http.StatusOK, status)
	var started startChatResponse
	req.NoError(json.Unmarshal(raw, &started))
	req.True(started.Created)

	status, raw = s.do(t, http.MethodPost, "/chat/start", aliceToken, fiber.Map{"email": bob.Email})
	req.Equal(http.StatusOK, status)
	var again startChatResponse
	req.NoError(json.Unmarshal(raw, &again))
	req.False(again.Created)
	req.Equal(started.ChatID, again.ChatID)

	// Sending and reading a message
	status, raw = s.do(t, http.MethodPost, "/chat/message", aliceToken, fiber.Map{"chat_id": started.ChatID, "message": "hello bob"})
	req.Equal(http.StatusOK, status)
	var sent struct {
		Message domain.Message `json:"message"`
	}
	req.NoError(json.Unmarshal(raw, &sent))
	req.Equal("hello bob", sent.Message.Body)
	req.Equal(domain.MessageDelivered, sent.Message.Status)
	req.Equal(alice.ID, sent.Message.AuthorID)

	status, raw = s.do(t, http.MethodGet, "/chat/"+itoa(started.ChatID)+"/messages", bobToken, nil)
	req.Equal(http.StatusOK, status)
	var history domain.ChatMessages
	req.NoError(json.Unmarshal(raw, &history))
	req.Equal(started.ChatID, history.ChatID)
	req.Len(history.Messages, 1)
	req.Equal(alice.ID, history.Partner.ID)

	status, _ = s.do(t, http.MethodPatch, "/chat/messages/read", aliceToken, fiber.Map{"message_ids": []uint64{uint64(sent.Message.ID)}})
	req.Equal(http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPatch, "/chat/messages/read", bobToken, fiber.Map{"message_ids": []uint64{uint64(sent.Message.ID)}})
	req.Equal(http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodPatch, "/chat/messages/read", bobToken, fiber.Map{"message_ids": []uint64{}})
	req.Equal(http.StatusUnprocessableEntity, status)

	// Home view of Bob
	status, raw = s.do(t, http.MethodGet, "/", bobToken, nil)
	req.Equal(http.StatusOK, status)
	var home domain.Home
	req.NoError(json.Unmarshal(raw, &home))
	req.Empty(home.Contacts)
	req.Len(home.Chats, 1)
	req.Equal(0, home.Chats[0].UnreadMessages)
	req.Equal("hello bob", *home.Chats[0].LastMessage)
}

func TestServer_Messages_Errors(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	_, aliceToken := s.createUser(t, "alice")

	status, _ := s.do(t, http.MethodGet, "/chat/abc/messages", aliceToken, nil)
	req.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodGet, "/chat/77/messages", aliceToken, nil)
	req.Equal(http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/chat/message", aliceToken, fiber.Map{"chat_id": 77, "message": "anyone?"})
	req.Equal(http.StatusNotFound, status)
}

func TestServer_UpdateUserStatus(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	alice, aliceToken := s.createUser(t, "alice")

	status, _ := s.do(t, http.MethodPatch, "/user-status", aliceToken, fiber.Map{"active": true})
	req.Equal(http.StatusNoContent, status)
	user, err := s.users.GetUser(alice.ID)
	req.NoError(err)
	req.Equal(domain.StatusOnline, user.Status)
	req.False(user.LastSeen.IsZero())

	status, _ = s.do(t, http.MethodPatch, "/user-status", aliceToken, fiber.Map{"active": false})
	req.Equal(http.StatusNoContent, status)
	user, err = s.users.GetUser(alice.ID)
	req.NoError(err)
	req.Equal(domain.StatusOffline, user.Status)

	status, _ = s.do(t, http.MethodPatch, "/user-status", aliceToken, fiber.Map{"status": "away"})
	req.Equal(http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodPatch, "/user-status", aliceToken, fiber.Map{"status": "busy"})
	req.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.do(t, http.MethodPatch, "/user-status", aliceToken, fiber.Map{})
	req.Equal(http.StatusUnprocessableEntity, status)
}

func itoa(id domain.ChatID) string {
	return strconv.FormatUint(uint64(id), 10)
}
