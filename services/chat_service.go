package services

import (
	"cmp"
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/repositories"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

type IChatService interface {
	StartChat(ctx context.Context, cmd domain.StartChatCommand) (domain.Chat, bool, error)
	ListChats(ctx context.Context, userID domain.UserID) ([]domain.ChatSummary, error)
}

type ChatService struct {
	log       *slog.Logger
	users     repositories.IUserRepository
	contacts  repositories.IContactRepository
	chats     repositories.IChatRepository
	messages  repositories.IMessageRepository
	publisher contract.IPublisher
}

func NewChatService(log *slog.Logger, users repositories.IUserRepository, contacts repositories.IContactRepository,
	chats repositories.IChatRepository, messages repositories.IMessageRepository, publisher contract.IPublisher) *ChatService {
	return &ChatService{
		log:       log,
		users:     users,
		contacts:  contacts,
		chats:     chats,
		messages:  messages,
		publisher: publisher,
	}
}

// StartChat returns the chat between the requester and the partner, creating
// it when they never talked. Only the requester's contact list is checked:
// the partner may not have the requester as a contact.
// ChatStarted is published to the partner only when the chat is new.
func (s *ChatService) StartChat(_ context.Context, cmd domain.StartChatCommand) (domain.Chat, bool, error) {
	if err := validateEmail(cmd.PartnerEmail); err != nil {
		return domain.Chat{}, false, err
	}
	partner, err := s.users.GetUserByEmail(cmd.PartnerEmail)
	if err != nil {
		return domain.Chat{}, false, err
	}
	hasContact, err := s.contacts.HasContact(cmd.RequesterID, partner.ID)
	if err != nil {
		return domain.Chat{}, false, err
	}
	if !hasContact {
		return domain.Chat{}, false, fmt.Errorf("%w: you do not have permission to interact with this contact", errors.ErrNotAuthorized)
	}

	chat, created, err := s.chats.FindOrCreateChat(cmd.RequesterID, partner.ID, time.Now().UTC())
	if err != nil {
		return domain.Chat{}, false, err
	}
	if created {
		s.log.Debug("Chat started", "chat_id", chat.ID, "user_one", chat.UserOne, "user_two", chat.UserTwo)
		s.publisher.Publish(event.ChatStarted{Chat: chat, RequesterID: cmd.RequesterID, PartnerID: partner.ID})
	}
	return chat, created, nil
}

// ListChats summarizes every chat of the user, most recent activity first.
// Chats without any message come last, newest chat first.
func (s *ChatService) ListChats(_ context.Context, userID domain.UserID) ([]domain.ChatSummary, error) {
	chats, err := s.chats.ListChats(userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary, err := s.summarize(chat, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	slices.SortStableFunc(summaries, compareSummaries)
	return summaries, nil
}

func (s *ChatService) summarize(chat domain.Chat, viewer domain.UserID) (domain.ChatSummary, error) {
	partner, err := s.users.GetUser(chat.PartnerOf(viewer))
	if err != nil {
		return domain.ChatSummary{}, err
	}
	last, err := s.messages.LastMessage(chat.ID)
	if err != nil {
		return domain.ChatSummary{}, err
	}
	unread, err := s.messages.CountUnread(chat.ID, viewer)
	if err != nil {
		return domain.ChatSummary{}, err
	}
	summary := domain.ChatSummary{
		ID:             chat.ID,
		Partner:        domain.NewPartner(partner),
		UnreadMessages: unread,
	}
	if last != nil {
		summary.LastMessage = &last.Body
		summary.LastMessageCreatedAt = &last.CreatedAt
	}
	return summary, nil
}

func compareSummaries(a, b domain.ChatSummary) int {
	switch {
	case a.LastMessageCreatedAt == nil && b.LastMessageCreatedAt == nil:
		return cmp.Compare(b.ID, a.ID)
	case a.LastMessageCreatedAt == nil:
		return 1
	case b.LastMessageCreatedAt == nil:
		return -1
	}
	return cmp.Or(b.LastMessageCreatedAt.Compare(*a.LastMessageCreatedAt), cmp.Compare(b.ID, a.ID))
}
