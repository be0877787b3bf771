//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	CreateUser(name, email, about string, at time.Time) (domain.User, error)
	GetUser(id domain.UserID) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	ListUsers() ([]domain.User, error)
	UpdateStatus(id domain.UserID, status domain.UserStatus) (domain.User, error)
	TouchLastSeen(id domain.UserID, at time.Time) error
}

type UserRepository struct {
	db       *badger.DB
	sequence *badger.Sequence
}

func NewUserRepository(db *badger.DB) (*UserRepository, error) {
	seq, err := openSequence(db, userSequenceKey)
	if err != nil {
		return nil, err
	}
	return &UserRepository{db: db, sequence: seq}, nil
}

// Close returns the unused part of the id lease.
func (u *UserRepository) Close() error {
	return releaseSequence(u.sequence)
}

// CreateUser persists a new user together with its unique email index.
// Emails are stored normalized, so uniqueness ignores case. New users start offline.
func (u *UserRepository) CreateUser(name, email, about string, at time.Time) (domain.User, error) {
	var user domain.User
	email = domain.NormalizeEmail(email)
	err := update(u.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, userEmailKey(email))
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", errors.ErrUserExists, email)
		}
		id, err := nextID(u.sequence)
		if err != nil {
			return err
		}
		user = domain.User{
			ID:        domain.UserID(id),
			Name:      name,
			Email:     email,
			About:     about,
			Status:    domain.StatusOffline,
			CreatedAt: at.UTC(),
		}
		if err = txn.Set(userKey(id), marshalUser(user)); err != nil {
			return err
		}
		return txn.Set(userEmailKey(email), marshalID(id))
	})
	return user, err
}

func (u *UserRepository) GetUser(id domain.UserID) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

// GetUserByEmail matches the email case-insensitively.
func (u *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		value, err := getValue(txn, userEmailKey(domain.NormalizeEmail(email)), errors.ErrUserNotFound)
		if err != nil {
			return err
		}
		id, err := unmarshalID(value)
		if err != nil {
			return err
		}
		user, err = getUser(txn, domain.UserID(id))
		return err
	})
	return user, err
}

func (u *UserRepository) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		return scan(txn, userPrefix(), false, func(_, value []byte) (bool, error) {
			user, err := unmarshalUser(value)
			if err != nil {
				return false, err
			}
			users = append(users, user)
			return true, nil
		})
	})
	return users, err
}

func (u *UserRepository) UpdateStatus(id domain.UserID, status domain.UserStatus) (domain.User, error) {
	return u.mutate(id, func(user *domain.User) {
		user.Status = status
	})
}

func (u *UserRepository) TouchLastSeen(id domain.UserID, at time.Time) error {
	_, err := u.mutate(id, func(user *domain.User) {
		user.LastSeen = at.UTC()
	})
	return err
}

func (u *UserRepository) mutate(id domain.UserID, apply func(user *domain.User)) (domain.User, error) {
	var user domain.User
	err := update(u.db, func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		if err != nil {
			return err
		}
		apply(&user)
		return txn.Set(userKey(uint64(id)), marshalUser(user))
	})
	return user, err
}

func getUser(txn *badger.Txn, id domain.UserID) (domain.User, error) {
	value, err := getValue(txn, userKey(uint64(id)), errors.ErrUserNotFound)
	if err != nil {
		return domain.User{}, err
	}
	return unmarshalUser(value)
}
