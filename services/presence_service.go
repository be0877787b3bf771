package services

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/repositories"
	"log/slog"
	"time"
)

type IPresenceService interface {
	SetActive(ctx context.Context, userID domain.UserID, active bool) error
	SetStatus(ctx context.Context, userID domain.UserID, status string) error
	Touch(ctx context.Context, userID domain.UserID) error
}

type PresenceService struct {
	log       *slog.Logger
	users     repositories.IUserRepository
	publisher contract.IPublisher
}

func NewPresenceService(log *slog.Logger, users repositories.IUserRepository, publisher contract.IPublisher) *PresenceService {
	return &PresenceService{log: log, users: users, publisher: publisher}
}

func (s *PresenceService) SetActive(ctx context.Context, userID domain.UserID, active bool) error {
	return s.setStatus(ctx, userID, domain.StatusFromActive(active))
}

// SetStatus accepts any known status, away included.
func (s *PresenceService) SetStatus(ctx context.Context, userID domain.UserID, status string) error {
	parsed, err := domain.ParseUserStatus(status)
	if err != nil {
		return err
	}
	return s.setStatus(ctx, userID, parsed)
}

// Touch records activity without broadcasting anything.
func (s *PresenceService) Touch(_ context.Context, userID domain.UserID) error {
	return s.users.TouchLastSeen(userID, time.Now())
}

// setStatus broadcasts even when the status did not change.
func (s *PresenceService) setStatus(_ context.Context, userID domain.UserID, status domain.UserStatus) error {
	user, err := s.users.UpdateStatus(userID, status)
	if err != nil {
		return err
	}
	s.log.Debug("User status changed", "user_id", userID, "status", status)
	s.publisher.Publish(event.UserStatusChange{UserID: user.ID, Status: user.Status, At: time.Now().UTC()})
	return nil
}
