package event

import (
	"direct-chat/domain"
	"fmt"
	"time"
)

type Type string

const (
	ChatStartedType      Type = "ChatStarted"
	MessageSentType      Type = "MessageSent"
	MessageReadType      Type = "MessageRead"
	UserStatusChangeType Type = "UserStatusChange"
)

// PresenceChannel is open to every authenticated user.
const PresenceChannel = "presence"

const (
	chatChannelPrefix      = "chat."
	chatStartChannelPrefix = "chat.start.user."
)

// ChatChannel carries message and read events of one chat.
func ChatChannel(id domain.ChatID) string {
	return fmt.Sprintf("%s%d", chatChannelPrefix, id)
}

// ChatStartChannel notifies a single user that someone opened a chat with them.
func ChatStartChannel(id domain.UserID) string {
	return fmt.Sprintf("%s%d", chatStartChannelPrefix, id)
}

// DomainEvent is a state change delivered to every subscriber of Channel
// except the connections of Actor.
type DomainEvent interface {
	Type() Type
	Channel() string
	Actor() domain.UserID
}

type ChatStarted struct {
	Chat        domain.Chat
	RequesterID domain.UserID
	PartnerID   domain.UserID
}

func (e ChatStarted) Type() Type           { return ChatStartedType }
func (e ChatStarted) Channel() string      { return ChatStartChannel(e.PartnerID) }
func (e ChatStarted) Actor() domain.UserID { return e.RequesterID }

type MessageSent struct {
	Message domain.Message
}

func (e MessageSent) Type() Type           { return MessageSentType }
func (e MessageSent) Channel() string      { return ChatChannel(e.Message.ChatID) }
func (e MessageSent) Actor() domain.UserID { return e.Message.AuthorID }

type MessageRead struct {
	Message  domain.Message
	ReaderID domain.UserID
}

func (e MessageRead) Type() Type           { return MessageReadType }
func (e MessageRead) Channel() string      { return ChatChannel(e.Message.ChatID) }
func (e MessageRead) Actor() domain.UserID { return e.ReaderID }

type UserStatusChange struct {
	UserID domain.UserID
	Status domain.UserStatus
	At     time.Time
}

func (e UserStatusChange) Type() Type           { return UserStatusChangeType }
func (e UserStatusChange) Channel() string      { return PresenceChannel }
func (e UserStatusChange) Actor() domain.UserID { return e.UserID }
