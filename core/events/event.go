package events

import (
	"sync"

	"launchpad/core/types"
)

// Event represents a structured state change emitted by a contract.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Committed wraps an event emitted by a contract once the message that produced
// it has been committed.
type Committed struct {
	Contract string
	MsgID    string
	Evt      *types.Event
}

// EventType implements Event.
func (c Committed) EventType() string {
	if c.Evt == nil {
		return ""
	}
	return c.Evt.Type
}

// Recorder collects emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a snapshot of the recorded events.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in emission order.
func (r *Recorder) Types() []string {
	events := r.Events()
	out := make([]string, 0, len(events))
	for _, evt := range events {
		out = append(out, evt.EventType())
	}
	return out
}

type envelope struct {
	evt *types.Event
}

func (e envelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e envelope) Event() *types.Event { return e.evt }

// Wrap converts a raw event payload into the emitter-friendly envelope.
func Wrap(evt *types.Event) Event { return envelope{evt: evt} }

// Payload returns the raw event carried by evt, if any.
func Payload(evt Event) *types.Event {
	switch e := evt.(type) {
	case envelope:
		return e.evt
	case Committed:
		return e.Evt
	case interface{ Event() *types.Event }:
		return e.Event()
	}
	return nil
}
