//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IChatRepository interface {
	FindOrCreateChat(requester, partner domain.UserID, at time.Time) (domain.Chat, bool, error)
	GetChat(id domain.ChatID) (domain.Chat, error)
	ListChats(user domain.UserID) ([]domain.Chat, error)
}

type ChatRepository struct {
	db       *badger.DB
	sequence *badger.Sequence
}

func NewChatRepository(db *badger.DB) (*ChatRepository, error) {
	seq, err := openSequence(db, chatSequenceKey)
	if err != nil {
		return nil, err
	}
	return &ChatRepository{db: db, sequence: seq}, nil
}

func (c *ChatRepository) Close() error {
	return releaseSequence(c.sequence)
}

// FindOrCreateChat returns the chat of the unordered pair (requester, partner),
// creating it when missing. The pair key is read inside the transaction, so two
// concurrent creations conflict and the loser re-reads the winner's chat:
// created is true for exactly one caller.
func (c *ChatRepository) FindOrCreateChat(requester, partner domain.UserID, at time.Time) (domain.Chat, bool, error) {
	pair := domain.NewPair(requester, partner)
	pairKey := chatPairKey(uint64(pair.Low), uint64(pair.High))

	var chat domain.Chat
	var created bool
	err := update(c.db, func(txn *badger.Txn) error {
		created = false
		value, err := getValue(txn, pairKey, errors.ErrChatNotFound)
		switch {
		case err == nil:
			id, err := unmarshalID(value)
			if err != nil {
				return err
			}
			chat, err = getChat(txn, domain.ChatID(id))
			return err
		case !errors.Is(err, errors.ErrChatNotFound):
			return err
		}

		id, err := nextID(c.sequence)
		if err != nil {
			return err
		}
		chat = domain.Chat{
			ID:        domain.ChatID(id),
			UserOne:   requester,
			UserTwo:   partner,
			CreatedAt: at.UTC(),
		}
		if err = txn.Set(chatKey(id), marshalChat(chat)); err != nil {
			return err
		}
		if err = txn.Set(pairKey, marshalID(id)); err != nil {
			return err
		}
		if err = txn.Set(chatUserKey(uint64(requester), id), nil); err != nil {
			return err
		}
		if err = txn.Set(chatUserKey(uint64(partner), id), nil); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return domain.Chat{}, false, err
	}
	return chat, created, nil
}

func (c *ChatRepository) GetChat(id domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = getChat(txn, id)
		return err
	})
	return chat, err
}

// ListChats returns every chat the user takes part in, by ascending id.
func (c *ChatRepository) ListChats(user domain.UserID) ([]domain.Chat, error) {
	var chats []domain.Chat
	prefix := chatUserPrefix(uint64(user))
	err := c.db.View(func(txn *badger.Txn) error {
		var ids []domain.ChatID
		err := scan(txn, prefix, false, func(key, _ []byte) (bool, error) {
			raw := strings.TrimPrefix(string(key), string(prefix))
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return false, fmt.Errorf("malformed chat index key %q: %w", key, err)
			}
			ids = append(ids, domain.ChatID(id))
			return true, nil
		})
		if err != nil {
			return err
		}
		for _, id := range ids {
			chat, err := getChat(txn, id)
			if err != nil {
				return err
			}
			chats = append(chats, chat)
		}
		return nil
	})
	return chats, err
}

func getChat(txn *badger.Txn, id domain.ChatID) (domain.Chat, error) {
	value, err := getValue(txn, chatKey(uint64(id)), errors.ErrChatNotFound)
	if err != nil {
		return domain.Chat{}, err
	}
	return unmarshalChat(value)
}
