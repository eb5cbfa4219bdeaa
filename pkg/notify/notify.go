// Package notify delivers widget selection events to the host application.
//
// The host bridge is modeled as a [Notifier] with a single Emit operation.
// A widget may run without one: a nil Notifier means "no host present" and
// callers skip emission rather than fail.
//
// Backends:
//   - [LogNotifier]: one structured log line per event
//   - [RedisNotifier]: PUBLISH of the JSON event on a per-key channel
//   - [MongoNotifier]: one document per event in a collection
//   - [Recorder]: in-memory, for tests and terminal status lines
//
// Use [Multi] to fan out to several backends and [Func] to adapt a plain
// function.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Priority controls how the host schedules an event.
type Priority string

const (
	// PriorityDefault lets the host coalesce repeated values.
	PriorityDefault Priority = ""

	// PriorityEvent asks the host to deliver every emission immediately,
	// even when the value repeats.
	PriorityEvent Priority = "event"
)

// Options configures a single emission.
type Options struct {
	Priority Priority
}

// Notifier is the host bridge.
type Notifier interface {
	Emit(ctx context.Context, key, value string, opts Options) error
}

// Event is the record shared by the backends that persist or forward
// emissions.
type Event struct {
	ID       string    `json:"id" bson:"_id"`
	Key      string    `json:"key" bson:"key"`
	Value    string    `json:"value" bson:"value"`
	Priority Priority  `json:"priority,omitempty" bson:"priority,omitempty"`
	At       time.Time `json:"at" bson:"at"`
}

// NewEvent stamps an emission with a fresh ID and the current time.
func NewEvent(key, value string, opts Options) Event {
	return Event{
		ID:       uuid.NewString(),
		Key:      key,
		Value:    value,
		Priority: opts.Priority,
		At:       time.Now().UTC(),
	}
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, key, value string, opts Options) error

// Emit calls f.
func (f Func) Emit(ctx context.Context, key, value string, opts Options) error {
	return f(ctx, key, value, opts)
}

type multi []Notifier

// Multi returns a Notifier that emits to every non-nil notifier in order.
// Every backend is attempted; their errors are joined. Multi returns nil
// when no notifier is left, so the result can be passed on as "no host".
func Multi(notifiers ...Notifier) Notifier {
	var m multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multi) Emit(ctx context.Context, key, value string, opts Options) error {
	var errs []error
	for _, n := range m {
		if err := n.Emit(ctx, key, value, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
