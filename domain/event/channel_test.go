package event

import (
	"direct-chat/domain"
	"direct-chat/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		want    ChannelName
		wantErr bool
	}{
		{"Presence", "presence", ChannelName{Kind: PresenceKind}, false},
		{"Chat", "chat.12", ChannelName{Kind: ChatKind, ChatID: 12}, false},
		{"Chat start", "chat.start.user.7", ChannelName{Kind: ChatStartKind, UserID: 7}, false},
		{"Chat without id", "chat.", ChannelName{}, true},
		{"Chat with zero id", "chat.0", ChannelName{}, true},
		{"Chat start with garbage", "chat.start.user.bob", ChannelName{}, true},
		{"Unknown family", "room.1", ChannelName{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got, err := ParseChannel(tt.channel)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrUnknownChannel)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}

func TestEvents_Channel_And_Actor(t *testing.T) {
	req := require.New(t)
	msg := domain.Message{ID: 1, ChatID: 3, AuthorID: 10}

	sent := MessageSent{Message: msg}
	req.Equal("chat.3", sent.Channel())
	req.Equal(domain.UserID(10), sent.Actor())

	read := MessageRead{Message: msg, ReaderID: 20}
	req.Equal("chat.3", read.Channel())
	req.Equal(domain.UserID(20), read.Actor())

	started := ChatStarted{Chat: domain.Chat{ID: 3}, RequesterID: 10, PartnerID: 20}
	req.Equal("chat.start.user.20", started.Channel())
	req.Equal(domain.UserID(10), started.Actor())

	status := UserStatusChange{UserID: 10, Status: domain.StatusOnline}
	req.Equal(PresenceChannel, status.Channel())
	req.Equal(domain.UserID(10), status.Actor())
}
