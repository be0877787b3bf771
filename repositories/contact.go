//go:generate go run go.uber.org/mock/mockgen -source=contact.go -destination=../mocks/mock_contact_repository.go -package=mocks
package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IContactRepository interface {
	AddContact(owner, contact domain.UserID, at time.Time) (domain.Contact, error)
	HasContact(owner, contact domain.UserID) (bool, error)
	ListContacts(owner domain.UserID) ([]domain.Contact, error)
}

type ContactRepository struct {
	db *badger.DB
}

func NewContactRepository(db *badger.DB) ContactRepository {
	return ContactRepository{db: db}
}

// AddContact creates the owner -> contact edge. The key itself is the
// uniqueness constraint on the ordered pair.
func (c ContactRepository) AddContact(owner, contact domain.UserID, at time.Time) (domain.Contact, error) {
	edge := domain.Contact{OwnerID: owner, ContactID: contact, CreatedAt: at.UTC()}
	key := contactKey(uint64(owner), uint64(contact))
	err := update(c.db, func(txn *badger.Txn) error {
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if found {
			return errors.ErrContactExists
		}
		return txn.Set(key, marshalContact(edge))
	})
	if err != nil {
		return domain.Contact{}, err
	}
	return edge, nil
}

func (c ContactRepository) HasContact(owner, contact domain.UserID) (bool, error) {
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, contactKey(uint64(owner), uint64(contact)))
		return err
	})
	return found, err
}

func (c ContactRepository) ListContacts(owner domain.UserID) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := c.db.View(func(txn *badger.Txn) error {
		return scan(txn, contactPrefix(uint64(owner)), false, func(_, value []byte) (bool, error) {
			contact, err := unmarshalContact(value)
			if err != nil {
				return false, err
			}
			contacts = append(contacts, contact)
			return true, nil
		})
	})
	return contacts, err
}
