// Package runtime handles event propagation between the request path and the
// live connections. It orchestrates delivery without containing business
// rules: those live in services, permissions in the authorizer.
package runtime

import (
	"context"
	"direct-chat/contract"
	"direct-chat/runtime/workers"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	registry    contract.IRegistry
	broker      *Broker
	sinkTimeout time.Duration
	done        chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	broker *Broker, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		registry:    registry,
		broker:      broker,
		sinkTimeout: sinkTimeout,
	}
}

// Start registers the fan-out workers to the supervisor and runs it in the
// background. It returns immediately; Stop waits for the workers.
func (o *Orchestrator) Start(ctx context.Context) {
	fanoutWorkers := o.prepareFanoutWorkers()

	o.mu.Lock()
	if o.done != nil {
		o.mu.Unlock()
		o.log.Warn("Orchestrator already started")
		return
	}
	o.supervisor.Add(fanoutWorkers...)
	done := make(chan struct{})
	o.done = done
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "fanout_workers", len(fanoutWorkers))
	go func() {
		defer close(done)
		o.supervisor.Run(ctx)
	}()
}

// prepareFanoutWorkers creates one worker per broker shard. A shard has a
// single reader, which keeps the events of a channel in order.
func (o *Orchestrator) prepareFanoutWorkers() []contract.Worker {
	var res []contract.Worker
	for _, shard := range o.broker.Shards() {
		res = append(res, workers.NewEventFanout(o.log, o.registry, shard, o.sinkTimeout))
	}
	return res
}

// Stop cancels the supervised context and waits until every worker returned.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()

	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
	o.log.Debug("Orchestrator workers stopped")
}
