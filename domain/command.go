package domain

import "time"

type AddContactCommand struct {
	OwnerID      UserID
	ContactEmail string
}

type StartChatCommand struct {
	RequesterID  UserID
	PartnerEmail string
}

type SendMessageCommand struct {
	ChatID    ChatID
	SenderID  UserID
	Body      string
	CreatedAt time.Time
}

type MarkReadCommand struct {
	ActorID    UserID
	MessageIDs []MessageID
}

type GetMessagesCommand struct {
	ChatID      ChatID
	RequesterID UserID
}
