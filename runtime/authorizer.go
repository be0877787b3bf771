package runtime

import (
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/repositories"
	"fmt"
)

// ChannelAuthorizer holds the capability check of every channel family.
type ChannelAuthorizer struct {
	chats repositories.IChatRepository
}

func NewChannelAuthorizer(chats repositories.IChatRepository) ChannelAuthorizer {
	return ChannelAuthorizer{chats: chats}
}

// CanSubscribe returns nil when userID may listen on channel:
//   - chat.{id}: the user is one of the two participants
//   - chat.start.user.{id}: the user is the addressed user
//   - presence: any authenticated user
func (a ChannelAuthorizer) CanSubscribe(userID domain.UserID, channel string) error {
	name, err := event.ParseChannel(channel)
	if err != nil {
		return err
	}
	switch name.Kind {
	case event.PresenceKind:
		return nil
	case event.ChatStartKind:
		if name.UserID != userID {
			return fmt.Errorf("%w: %s is addressed to another user", errors.ErrNotAuthorized, channel)
		}
		return nil
	case event.ChatKind:
		chat, err := a.chats.GetChat(name.ChatID)
		if err != nil {
			return err
		}
		if !chat.HasParticipant(userID) {
			return fmt.Errorf("%w: not a participant of %s", errors.ErrNotAuthorized, channel)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownChannel, channel)
	}
}
