package workers

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain/event"
	"log/slog"
	"sync"
	"time"
)

// EventFanout delivers published events to the live connections of their
// channel, the actor's own connections excepted.
//
// Delivery is best-effort: no durability, no retries. Each sink gets
// sinkTimeout to accept the event so that one stuck client cannot hold the
// others back.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      <-chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, registry: registry, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout pushes one event to every recipient concurrently and returns once
// each of them accepted it or timed out. Websocket sinks never block, but any
// EventSink may: the per-sink timeout bounds how long a blocking one holds
// back the shard.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.registry.GetSinksForChannel(evt.Channel(), evt.Actor())
	if len(sinks) == 0 {
		w.log.Debug("No subscriber", "type", evt.Type(), "channel", evt.Channel())
		return
	}

	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(sink contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := sink.Consume(sinkCtx, evt); err != nil {
				w.log.Warn("Event not delivered",
					"type", evt.Type(), "channel", evt.Channel(), "error", err)
			}
		}(sink)
	}
	wg.Wait()
}
