package runtime

import (
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBroker_Publish_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broker := NewBroker(log, NewRegistry(), nil, 1, 1)

	first := event.UserStatusChange{UserID: 1, Status: domain.StatusOnline, At: time.Now()}
	second := event.UserStatusChange{UserID: 2, Status: domain.StatusOnline, At: time.Now()}

	// When two events are published on a buffer of one
	broker.Publish(first)
	broker.Publish(second)

	// Then the first one is queued and the second one dropped without blocking
	shard := broker.Shards()[0]
	req.Len(shard, 1)
	req.Equal(first, <-shard)
}

func TestBroker_Subscribe_Is_Gated_By_Authorizer(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	authorizer := mocks.NewMockIAuthorizer(ctrl)
	registry := NewRegistry()
	broker := NewBroker(log, registry, authorizer, 1, 1)
	connectionID := uuid.NewString()

	authorizer.EXPECT().CanSubscribe(domain.UserID(3), event.ChatChannel(1)).Return(errors.ErrNotAuthorized)
	authorizer.EXPECT().CanSubscribe(domain.UserID(3), event.PresenceChannel).Return(nil)

	// Given Carol is not a participant of chat 1
	err := broker.Subscribe(connectionID, 3, event.ChatChannel(1), Sink{name: "carol"})
	req.ErrorIs(err, errors.ErrNotAuthorized)
	req.Nil(registry.GetSinksForChannel(event.ChatChannel(1), 1))

	// Then presence is still open to her
	req.NoError(broker.Subscribe(connectionID, 3, event.PresenceChannel, Sink{name: "carol"}))
	req.Len(registry.GetSinksForChannel(event.PresenceChannel, 1), 1)

	// And her socket closing removes everything
	broker.Disconnect(connectionID)
	req.Nil(registry.GetSinksForChannel(event.PresenceChannel, 1))
}

func TestBroker_Channel_Always_Lands_On_Same_Shard(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broker := NewBroker(log, NewRegistry(), nil, 100, 4)
	shards := broker.Shards()
	req.Len(shards, 4)

	// When a message and its read receipt are published on the same chat
	sent := event.MessageSent{Message: domain.Message{ID: 1, ChatID: 7, AuthorID: 1}}
	read := event.MessageRead{Message: domain.Message{ID: 1, ChatID: 7, AuthorID: 1, Status: domain.MessageRead}, ReaderID: 2}
	broker.Publish(sent)
	broker.Publish(read)

	// Then both sit on one shard, in publish order
	shard := shards[broker.shardOf(event.ChatChannel(7))]
	req.Len(shard, 2)
	req.Equal(sent, <-shard)
	req.Equal(read, <-shard)
}
