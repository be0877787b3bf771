package transport

import (
	"direct-chat/domain"
	"direct-chat/domain/event"
	"time"
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"

	frameSubscribed   = "subscribed"
	frameUnsubscribed = "unsubscribed"
	frameError        = "error"
)

// clientFrame is what a connection sends: {"action":"subscribe","channel":"chat.1"}.
type clientFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// serverFrame is either an acknowledgement, an error or a domain event.
type serverFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type chatPayload struct {
	ID        domain.ChatID `json:"id"`
	UserOne   domain.UserID `json:"user_one"`
	UserTwo   domain.UserID `json:"user_two"`
	CreatedAt time.Time     `json:"created_at"`
}

type chatStartedPayload struct {
	Chat chatPayload `json:"chat"`
}

type messagePayload struct {
	Message domain.Message `json:"message"`
}

type userStatusPayload struct {
	UserID   domain.UserID     `json:"user_id"`
	Status   domain.UserStatus `json:"status"`
	IsActive bool              `json:"is_active"`
	At       time.Time         `json:"at"`
}

func eventFrame(e event.DomainEvent) serverFrame {
	frame := serverFrame{Type: string(e.Type()), Channel: e.Channel()}
	switch evt := e.(type) {
	case event.ChatStarted:
		frame.Payload = chatStartedPayload{Chat: chatPayload{
			ID:        evt.Chat.ID,
			UserOne:   evt.Chat.UserOne,
			UserTwo:   evt.Chat.UserTwo,
			CreatedAt: evt.Chat.CreatedAt,
		}}
	case event.MessageSent:
		frame.Payload = messagePayload{Message: evt.Message}
	case event.MessageRead:
		frame.Payload = messagePayload{Message: evt.Message}
	case event.UserStatusChange:
		frame.Payload = userStatusPayload{
			UserID:   evt.UserID,
			Status:   evt.Status,
			IsActive: evt.Status == domain.StatusOnline,
			At:       evt.At,
		}
	}
	return frame
}
