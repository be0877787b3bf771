package services

import (
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/moderation"
	"direct-chat/repositories"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var badgerDown = errors.New("badger down")

type RecordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *RecordingPublisher) Publish(e event.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *RecordingPublisher) Events() []event.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.DomainEvent(nil), p.events...)
}

// fixture wires every service on top of a throwaway Badger database.
type fixture struct {
	log       *slog.Logger
	users     *repositories.UserRepository
	contacts  repositories.ContactRepository
	chats     *repositories.ChatRepository
	messages  *repositories.MessageRepository
	publisher *RecordingPublisher

	contactService  *ContactService
	chatService     *ChatService
	messageService  *MessageService
	presenceService *PresenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	users, err := repositories.NewUserRepository(db)
	req.NoError(err)
	chats, err := repositories.NewChatRepository(db)
	req.NoError(err)
	messages, err := repositories.NewMessageRepository(db, log, nil)
	req.NoError(err)
	t.Cleanup(func() {
		_ = users.Close()
		_ = chats.Close()
		_ = messages.Close()
		_ = db.Close()
	})

	contacts := repositories.NewContactRepository(db)
	moderator, err := moderation.NewModerator([]string{"spoiler"}, '*', log)
	req.NoError(err)
	publisher := &RecordingPublisher{}
	return &fixture{
		log:             log,
		users:           users,
		contacts:        contacts,
		chats:           chats,
		messages:        messages,
		publisher:       publisher,
		contactService:  NewContactService(log, users, contacts),
		chatService:     NewChatService(log, users, contacts, chats, messages, publisher),
		messageService:  NewMessageService(log, users, chats, messages, moderator, publisher),
		presenceService: NewPresenceService(log, users, publisher),
	}
}

func (f *fixture) createUser(t *testing.T, name string) domain.User {
	t.Helper()
	user, err := f.users.CreateUser(name, name+"@example.com", "Hey there", time.Now())
	require.NoError(t, err)
	return user
}

func (f *fixture) addContact(t *testing.T, owner, contact domain.User) {
	t.Helper()
	_, err := f.contacts.AddContact(owner.ID, contact.ID, time.Now())
	require.NoError(t, err)
}

// startChat opens a chat between two users who have each other as contacts.
func (f *fixture) startChat(t *testing.T, requester, partner domain.User) domain.Chat {
	t.Helper()
	chat, _, err := f.chats.FindOrCreateChat(requester.ID, partner.ID, time.Now())
	require.NoError(t, err)
	return chat
}
