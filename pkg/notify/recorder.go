package notify

import (
	"context"
	"sync"
)

// Recorder keeps every emitted event in memory. It is safe for concurrent
// use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records the event.
func (r *Recorder) Emit(_ context.Context, key, value string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, NewEvent(key, value, opts))
	return nil
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Values returns just the emitted values, in order.
func (r *Recorder) Values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Value
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var _ Notifier = (*Recorder)(nil)
