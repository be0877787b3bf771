// Package domain contains core concepts of the direct-messaging system.
// This file defines messages and their delivery lifecycle.
package domain

import (
	"direct-chat/errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxBodyLength bounds a message body, counted in runes.
const MaxBodyLength = 4096

type MessageID uint64

type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Message is immutable once stored, except for the Delivered -> Read transition.
type Message struct {
	ID        MessageID     `json:"id"`
	ChatID    ChatID        `json:"chat_id"`
	AuthorID  UserID        `json:"user_id"`
	Body      string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	Status    MessageStatus `json:"status"`
}

// IsUnreadFor reports whether viewer still has to read the message.
func (m Message) IsUnreadFor(viewer UserID) bool {
	return m.AuthorID != viewer && m.Status == MessageDelivered
}

// NormalizeBody trims surrounding whitespace and validates what is left.
// A whitespace-only body is empty.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", errors.ErrEmptyBody
	}
	if n := utf8.RuneCountInString(body); n > MaxBodyLength {
		return "", fmt.Errorf("%w: %d characters, max %d", errors.ErrBodyTooLong, n, MaxBodyLength)
	}
	return body, nil
}
