package services

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/repositories"
	"fmt"
	"log/slog"
	"time"
)

type IMessageService interface {
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	MarkRead(ctx context.Context, cmd domain.MarkReadCommand) error
	ListMessages(ctx context.Context, cmd domain.GetMessagesCommand) (domain.ChatMessages, error)
	UnreadCount(ctx context.Context, chatID domain.ChatID, viewerID domain.UserID) (int, error)
}

type MessageService struct {
	log       *slog.Logger
	users     repositories.IUserRepository
	chats     repositories.IChatRepository
	messages  repositories.IMessageRepository
	moderator contract.IModerator
	publisher contract.IPublisher
}

// NewMessageService builds the message service. moderator may be nil, bodies are then stored as sent.
func NewMessageService(log *slog.Logger, users repositories.IUserRepository, chats repositories.IChatRepository,
	messages repositories.IMessageRepository, moderator contract.IModerator, publisher contract.IPublisher) *MessageService {
	return &MessageService{log: log, users: users, chats: chats, messages: messages, moderator: moderator, publisher: publisher}
}

// SendMessage stores the message as delivered and notifies the other
// participant. The sender's own connections are not notified.
// The body is trimmed, then banned words are masked before it is stored.
func (s *MessageService) SendMessage(_ context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	chat, err := s.participantChat(cmd.ChatID, cmd.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	body, err := domain.NormalizeBody(cmd.Body)
	if err != nil {
		return domain.Message{}, err
	}
	at := cmd.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}

	if s.moderator != nil {
		var words []string
		if body, words = s.moderator.Censor(body); len(words) > 0 {
			s.log.Info("Banned words masked", "chat_id", chat.ID, "sender_id", cmd.SenderID, "count", len(words))
		}
	}

	message, err := s.messages.StoreMessage(chat.ID, cmd.SenderID, body, domain.MessageDelivered, at)
	if err != nil {
		return domain.Message{}, err
	}
	s.publisher.Publish(event.MessageSent{Message: message})
	return message, nil
}

// MarkRead flips the given messages to read, in order. Every id must exist
// before anything is touched. A message the actor authored, or one of a chat
// the actor is not part of, stops the loop: messages handled before it stay
// read.
func (s *MessageService) MarkRead(_ context.Context, cmd domain.MarkReadCommand) error {
	if len(cmd.MessageIDs) == 0 {
		return errors.ErrNoMessageIDs
	}
	messages := make([]domain.Message, 0, len(cmd.MessageIDs))
	for _, id := range cmd.MessageIDs {
		message, err := s.messages.GetMessage(id)
		if err != nil {
			return err
		}
		messages = append(messages, message)
	}

	for _, message := range messages {
		chat, err := s.chats.GetChat(message.ChatID)
		if err != nil {
			return err
		}
		if message.AuthorID == cmd.ActorID || !chat.HasParticipant(cmd.ActorID) {
			return fmt.Errorf("%w: you are not authorized to do this action", errors.ErrNotAuthorized)
		}
		read, err := s.messages.UpdateStatus(message.ID, domain.MessageRead)
		if err != nil {
			return err
		}
		s.publisher.Publish(event.MessageRead{Message: read, ReaderID: cmd.ActorID})
	}
	return nil
}

// ListMessages returns the whole history of a chat, oldest first, together
// with the other participant.
func (s *MessageService) ListMessages(_ context.Context, cmd domain.GetMessagesCommand) (domain.ChatMessages, error) {
	chat, err := s.participantChat(cmd.ChatID, cmd.RequesterID)
	if err != nil {
		return domain.ChatMessages{}, err
	}
	messages, err := s.messages.GetMessages(chat.ID)
	if err != nil {
		return domain.ChatMessages{}, err
	}
	partner, err := s.users.GetUser(chat.PartnerOf(cmd.RequesterID))
	if err != nil {
		return domain.ChatMessages{}, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return domain.ChatMessages{ChatID: chat.ID, Messages: messages, Partner: domain.NewPartner(partner)}, nil
}

func (s *MessageService) UnreadCount(_ context.Context, chatID domain.ChatID, viewerID domain.UserID) (int, error) {
	chat, err := s.participantChat(chatID, viewerID)
	if err != nil {
		return 0, err
	}
	return s.messages.CountUnread(chat.ID, viewerID)
}

func (s *MessageService) participantChat(chatID domain.ChatID, userID domain.UserID) (domain.Chat, error) {
	chat, err := s.chats.GetChat(chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !chat.HasParticipant(userID) {
		return domain.Chat{}, fmt.Errorf("%w: you are not authorized to access this chat", errors.ErrNotAuthorized)
	}
	return chat, nil
}
