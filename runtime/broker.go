package runtime

import (
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"log/slog"

	"github.com/cespare/xxhash/v2"
)

// Broker is the authorization-gated publish/subscribe entry point.
// Subscriptions are checked against the authorizer before reaching the
// registry. Publish only enqueues: delivery happens in the fan-out workers.
//
// Events are spread over shards by channel. A channel always lands on the
// same shard, each shard is drained by one worker, so events of a channel
// are delivered in publish order.
type Broker struct {
	log        *slog.Logger
	registry   contract.IRegistry
	authorizer contract.IAuthorizer
	shards     []chan event.DomainEvent
}

// NewBroker creates shards queues of bufferSize events each.
func NewBroker(log *slog.Logger, registry contract.IRegistry, authorizer contract.IAuthorizer,
	bufferSize int, shards int) *Broker {
	if shards < 1 {
		shards = 1
	}
	queues := make([]chan event.DomainEvent, shards)
	for i := range queues {
		queues[i] = make(chan event.DomainEvent, bufferSize)
	}
	return &Broker{
		log:        log,
		registry:   registry,
		authorizer: authorizer,
		shards:     queues,
	}
}

// Publish never blocks the request that produced the event. When the shard
// is full the event is dropped: delivery is best-effort.
func (b *Broker) Publish(e event.DomainEvent) {
	select {
	case b.shards[b.shardOf(e.Channel())] <- e:
	default:
		b.log.Warn("Event buffer full, dropping event",
			"type", e.Type(), "channel", e.Channel(), "actor", e.Actor())
	}
}

// Shards returns the queues to drain, one fan-out worker each.
func (b *Broker) Shards() []<-chan event.DomainEvent {
	res := make([]<-chan event.DomainEvent, len(b.shards))
	for i, shard := range b.shards {
		res[i] = shard
	}
	return res
}

func (b *Broker) shardOf(channel string) int {
	return int(xxhash.Sum64String(channel) % uint64(len(b.shards)))
}

func (b *Broker) Subscribe(connectionID string, userID domain.UserID, channel string, sink contract.EventSink) error {
	if err := b.authorizer.CanSubscribe(userID, channel); err != nil {
		b.log.Debug("Subscription rejected", "user_id", userID, "channel", channel, "error", err)
		return err
	}
	b.registry.Subscribe(connectionID, userID, channel, sink)
	return nil
}

func (b *Broker) Unsubscribe(connectionID string, channel string) {
	b.registry.Unsubscribe(connectionID, channel)
}

func (b *Broker) Disconnect(connectionID string) {
	b.registry.Disconnect(connectionID)
}
