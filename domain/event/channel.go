package event

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"fmt"
	"strconv"
	"strings"
)

type ChannelKind int

const (
	ChatKind ChannelKind = iota + 1
	ChatStartKind
	PresenceKind
)

// ChannelName is a parsed channel name.
type ChannelName struct {
	Kind   ChannelKind
	ChatID domain.ChatID
	UserID domain.UserID
}

// ParseChannel recognizes the three channel families. The chat-start prefix is
// checked first because it shares the "chat." prefix.
func ParseChannel(name string) (ChannelName, error) {
	switch {
	case name == PresenceChannel:
		return ChannelName{Kind: PresenceKind}, nil
	case strings.HasPrefix(name, chatStartChannelPrefix):
		id, err := parseID(strings.TrimPrefix(name, chatStartChannelPrefix))
		if err != nil {
			return ChannelName{}, fmt.Errorf("%w: %q", errors.ErrUnknownChannel, name)
		}
		return ChannelName{Kind: ChatStartKind, UserID: domain.UserID(id)}, nil
	case strings.HasPrefix(name, chatChannelPrefix):
		id, err := parseID(strings.TrimPrefix(name, chatChannelPrefix))
		if err != nil {
			return ChannelName{}, fmt.Errorf("%w: %q", errors.ErrUnknownChannel, name)
		}
		return ChannelName{Kind: ChatKind, ChatID: domain.ChatID(id)}, nil
	default:
		return ChannelName{}, fmt.Errorf("%w: %q", errors.ErrUnknownChannel, name)
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("zero id")
	}
	return id, nil
}
