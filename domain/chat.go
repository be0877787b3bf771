package domain

import "time"

type ChatID uint64

// Chat pairs exactly two users. UserOne is whoever started it.
type Chat struct {
	ID        ChatID
	UserOne   UserID
	UserTwo   UserID
	CreatedAt time.Time
}

func (c Chat) HasParticipant(userID UserID) bool {
	return c.UserOne == userID || c.UserTwo == userID
}

// PartnerOf returns the other participant. The caller must be a participant.
func (c Chat) PartnerOf(userID UserID) UserID {
	if c.UserOne == userID {
		return c.UserTwo
	}
	return c.UserOne
}

// Pair is the unordered identity of a chat, normalized as (min, max).
type Pair struct {
	Low  UserID
	High UserID
}

func NewPair(a, b UserID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// ChatSummary is a row of the chat list shown on the home view.
type ChatSummary struct {
	ID                   ChatID     `json:"id"`
	Partner              Partner    `json:"partner"`
	LastMessage          *string    `json:"last_message"`
	LastMessageCreatedAt *time.Time `json:"last_message_created_at"`
	UnreadMessages       int        `json:"unread_messages"`
}

// ChatMessages is the full history of a chat as seen by one participant.
type ChatMessages struct {
	ChatID   ChatID    `json:"chat_id"`
	Messages []Message `json:"messages"`
	Partner  Partner   `json:"partner"`
}

// Home aggregates what a user sees when landing.
type Home struct {
	Contacts []ContactView `json:"contacts"`
	Chats    []ChatSummary `json:"chats"`
}
