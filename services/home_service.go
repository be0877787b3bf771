package services

import (
	"context"
	"direct-chat/domain"
)

type IHomeService interface {
	Show(ctx context.Context, userID domain.UserID) (domain.Home, error)
}

type HomeService struct {
	contacts IContactService
	chats    IChatService
	presence IPresenceService
}

func NewHomeService(contacts IContactService, chats IChatService, presence IPresenceService) *HomeService {
	return &HomeService{contacts: contacts, chats: chats, presence: presence}
}

// Show builds the landing view. Landing marks the user online and tells
// everyone listening on presence.
func (s *HomeService) Show(ctx context.Context, userID domain.UserID) (domain.Home, error) {
	contacts, err := s.contacts.ListContacts(ctx, userID)
	if err != nil {
		return domain.Home{}, err
	}
	chats, err := s.chats.ListChats(ctx, userID)
	if err != nil {
		return domain.Home{}, err
	}
	if err = s.presence.SetActive(ctx, userID, true); err != nil {
		return domain.Home{}, err
	}
	return domain.Home{Contacts: contacts, Chats: chats}, nil
}
