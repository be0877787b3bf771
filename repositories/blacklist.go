package repositories

import (
	"direct-chat/errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BlacklistRepository stores the words masked in message bodies. Words live
// in the keys only.
type BlacklistRepository struct {
	db *badger.DB
}

func NewBlacklistRepository(db *badger.DB) BlacklistRepository {
	return BlacklistRepository{db: db}
}

// BanWord stores a lower-cased word. Banning a word twice is a no-op.
func (b BlacklistRepository) BanWord(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return errors.ErrEmptyWord
	}
	return update(b.db, func(txn *badger.Txn) error {
		return txn.Set(blacklistKey(word), nil)
	})
}

// Words returns every banned word in lexicographical order.
func (b BlacklistRepository) Words() ([]string, error) {
	var words []string
	prefix := blacklistPrefix()
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return words, err
}
