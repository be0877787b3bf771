package services

import (
	"cmp"
	"context"
	"direct-chat/domain"
	"direct-chat/errors"
	"direct-chat/repositories"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

type IContactService interface {
	AddContact(ctx context.Context, cmd domain.AddContactCommand) (domain.Contact, error)
	ListContacts(ctx context.Context, ownerID domain.UserID) ([]domain.ContactView, error)
}

type ContactService struct {
	log      *slog.Logger
	users    repositories.IUserRepository
	contacts repositories.IContactRepository
}

func NewContactService(log *slog.Logger, users repositories.IUserRepository,
	contacts repositories.IContactRepository) *ContactService {
	return &ContactService{log: log, users: users, contacts: contacts}
}

// AddContact creates the owner -> contact edge only. The contact does not
// get the owner in return.
func (s *ContactService) AddContact(_ context.Context, cmd domain.AddContactCommand) (domain.Contact, error) {
	if err := validateEmail(cmd.ContactEmail); err != nil {
		return domain.Contact{}, err
	}
	owner, err := s.users.GetUser(cmd.OwnerID)
	if err != nil {
		return domain.Contact{}, err
	}
	if domain.NormalizeEmail(owner.Email) == domain.NormalizeEmail(cmd.ContactEmail) {
		return domain.Contact{}, errors.ErrSelfContact
	}
	contact, err := s.users.GetUserByEmail(cmd.ContactEmail)
	if err != nil {
		return domain.Contact{}, err
	}

	edge, err := s.contacts.AddContact(owner.ID, contact.ID, time.Now().UTC())
	if errors.Is(err, errors.ErrContactExists) {
		return domain.Contact{}, fmt.Errorf("%w: you already have %s in your contact list", errors.ErrConflict, contact.Name)
	}
	if err != nil {
		return domain.Contact{}, err
	}
	s.log.Debug("Contact added", "owner_id", owner.ID, "contact_id", contact.ID)
	return edge, nil
}

// ListContacts returns the owner's contacts sorted by display name and
// numbered from 1.
func (s *ContactService) ListContacts(_ context.Context, ownerID domain.UserID) ([]domain.ContactView, error) {
	edges, err := s.contacts.ListContacts(ownerID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(edges))
	for _, edge := range edges {
		user, err := s.users.GetUser(edge.ContactID)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	slices.SortStableFunc(users, func(a, b domain.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Email, b.Email))
	})

	views := make([]domain.ContactView, 0, len(users))
	for i, user := range users {
		views = append(views, domain.NewContactView(i+1, user))
	}
	return views, nil
}
