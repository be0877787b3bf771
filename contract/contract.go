//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision, so workers don't have to name themselves.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the receiving end of one client connection.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry indexes live connections by channel.
type IRegistry interface {
	GetSinksForChannel(channel string, exclude domain.UserID) []EventSink
	Subscribe(connectionID string, userID domain.UserID, channel string, sink EventSink)
	Unsubscribe(connectionID string, channel string)
	Disconnect(connectionID string)
}

// IAuthorizer decides whether a user may listen on a channel.
type IAuthorizer interface {
	CanSubscribe(userID domain.UserID, channel string) error
}

// IPublisher hands an event over for asynchronous delivery.
// Publishing never fails from the caller's point of view.
type IPublisher interface {
	Publish(e event.DomainEvent)
}

// ISubscriber is the connection-facing side of the broker.
type ISubscriber interface {
	Subscribe(connectionID string, userID domain.UserID, channel string, sink EventSink) error
	Unsubscribe(connectionID string, channel string)
	Disconnect(connectionID string)
}

// IModerator masks forbidden words in a message body.
// It returns the masked text and the words found, nil when the text is clean.
type IModerator interface {
	Censor(text string) (string, []string)
}
