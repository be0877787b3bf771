// Package domain contains core concepts of the direct-messaging system.
// This file defines users and their presence.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"direct-chat/errors"
	"fmt"
	"strings"
	"time"
)

// NormalizeEmail is the canonical form under which emails are stored and
// looked up: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserID uint64

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusAway    UserStatus = "away"
)

// ParseUserStatus accepts the wire value of a presence status.
func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case StatusOnline, StatusOffline, StatusAway:
		return UserStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownStatus, s)
	}
}

// StatusFromActive maps the boolean flag sent by clients to a status.
func StatusFromActive(active bool) UserStatus {
	if active {
		return StatusOnline
	}
	return StatusOffline
}

// User is created outside this service; only Status and LastSeen are mutated here.
type User struct {
	ID        UserID
	Name      string
	Email     string
	About     string
	Status    UserStatus
	LastSeen  time.Time
	CreatedAt time.Time
}

func (u User) IsActive() bool {
	return u.Status == StatusOnline
}

// Partner is the public view of the other side of a chat.
type Partner struct {
	ID       UserID     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	IsActive bool       `json:"is_active"`
	LastSeen *time.Time `json:"last_seen"`
}

func NewPartner(u User) Partner {
	return Partner{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsActive: u.IsActive(),
		LastSeen: lastSeen(u),
	}
}

func lastSeen(u User) *time.Time {
	if u.LastSeen.IsZero() {
		return nil
	}
	t := u.LastSeen
	return &t
}
