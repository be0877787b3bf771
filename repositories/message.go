//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	StoreMessage(chatID domain.ChatID, author domain.UserID, body string, status domain.MessageStatus, at time.Time) (domain.Message, error)
	GetMessage(id domain.MessageID) (domain.Message, error)
	GetMessages(chatID domain.ChatID) ([]domain.Message, error)
	LastMessage(chatID domain.ChatID) (*domain.Message, error)
	CountUnread(chatID domain.ChatID, viewer domain.UserID) (int, error)
	UpdateStatus(id domain.MessageID, status domain.MessageStatus) (domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	sequence      *badger.Sequence
	limitMessages *int
}

// NewMessageRepository opens the message id sequence. limitMessages, when set,
// caps how many of the most recent messages GetMessages returns.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := openSequence(db, messageSequenceKey)
	if err != nil {
		return nil, err
	}
	return &MessageRepository{db: db, log: log, sequence: seq, limitMessages: limitMessages}, nil
}

func (m *MessageRepository) Close() error {
	return releaseSequence(m.sequence)
}

// StoreMessage persists a message under "msg:{chat}:{unixnano}:{id}" so that a
// prefix scan yields messages by creation time, ties broken by the monotonic id.
// A secondary "msg:id:{id}" entry points back to that key.
func (m *MessageRepository) StoreMessage(chatID domain.ChatID, author domain.UserID, body string,
	status domain.MessageStatus, at time.Time) (domain.Message, error) {
	id, err := nextID(m.sequence)
	if err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:        domain.MessageID(id),
		ChatID:    chatID,
		AuthorID:  author,
		Body:      body,
		CreatedAt: at.UTC(),
		Status:    status,
	}
	key := messageKey(uint64(chatID), message.CreatedAt.UnixNano(), id)
	err = update(m.db, func(txn *badger.Txn) error {
		if err := txn.Set(key, marshalMessage(message)); err != nil {
			return err
		}
		return txn.Set(messageIDKey(id), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (m *MessageRepository) GetMessage(id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, _, err = getMessage(txn, id)
		return err
	})
	return message, err
}

// GetMessages returns the messages of a chat in ascending order.
func (m *MessageRepository) GetMessages(chatID domain.ChatID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		// Newest first so that the limit keeps the most recent messages.
		return scan(txn, messagePrefix(uint64(chatID)), true, func(_, value []byte) (bool, error) {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				return false, nil
			}
			message, err := unmarshalMessage(value)
			if err != nil {
				return false, err
			}
			messages = append(messages, message)
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// LastMessage returns nil when the chat has no message yet.
func (m *MessageRepository) LastMessage(chatID domain.ChatID) (*domain.Message, error) {
	var last *domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		return scan(txn, messagePrefix(uint64(chatID)), true, func(_, value []byte) (bool, error) {
			message, err := unmarshalMessage(value)
			if err != nil {
				return false, err
			}
			last = &message
			return false, nil
		})
	})
	return last, err
}

func (m *MessageRepository) CountUnread(chatID domain.ChatID, viewer domain.UserID) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		return scan(txn, messagePrefix(uint64(chatID)), false, func(_, value []byte) (bool, error) {
			message, err := unmarshalMessage(value)
			if err != nil {
				return false, err
			}
			if message.IsUnreadFor(viewer) {
				count++
			}
			return true, nil
		})
	})
	return count, err
}

func (m *MessageRepository) UpdateStatus(id domain.MessageID, status domain.MessageStatus) (domain.Message, error) {
	var message domain.Message
	err := update(m.db, func(txn *badger.Txn) error {
		var key []byte
		var err error
		message, key, err = getMessage(txn, id)
		if err != nil {
			return err
		}
		message.Status = status
		return txn.Set(key, marshalMessage(message))
	})
	return message, err
}

func getMessage(txn *badger.Txn, id domain.MessageID) (domain.Message, []byte, error) {
	key, err := getValue(txn, messageIDKey(uint64(id)), errors.ErrMessageNotFound)
	if err != nil {
		return domain.Message{}, nil, err
	}
	value, err := getValue(txn, key, errors.ErrMessageNotFound)
	if err != nil {
		return domain.Message{}, nil, err
	}
	message, err := unmarshalMessage(value)
	return message, key, err
}
