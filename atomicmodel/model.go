// Package atomicmodel defines the DEVS atomic-model contract: the seven
// transition callbacks plus Finish, expressed as a tagged capability
// interface rather than a class hierarchy. Concrete atomic models —
// differential-equation integrators, Petri nets, QSS extensions — are
// out of the core's scope; they are values that satisfy Model.
package atomicmodel

import (
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// Confluence is the tie-break a Model returns from Confluent when both
// an internal and one or more external events collide at the same
// instant.
type Confluence int

// The two confluence outcomes.
const (
	ConfluentInternal Confluence = iota
	ConfluentExternal
)

func (c Confluence) String() string {
	if c == ConfluentInternal {
		return "internal"
	}

	return "external"
}

// InitEvents is the map of named, typed values an atomic model receives
// at construction time, resolved by the ModelFactory from the model's
// Condition set.
type InitEvents map[string]Value

// Reply is one output event emitted by Output or Request: a destination
// port name local to the emitting model, plus the attributes to attach.
type Reply struct {
	Port string
	Attr devsevent.Attrs
}

// Model is the capability set every atomic model must implement.
type Model interface {
	// Init sets the model's initial state from InitEvents and the start
	// time, and returns the initial time-advance.
	Init(t devstime.Time, init InitEvents) devstime.Duration

	// Output is called before an internal transition at the scheduled
	// time, and returns the events to route out of the model's ports.
	Output(t devstime.Time) []Reply

	// Internal advances state due to a self-scheduled event and returns
	// the new time-advance.
	Internal(t devstime.Time) devstime.Duration

	// External handles inbound events arriving between internal events
	// and returns the new time-advance.
	External(t devstime.Time, evts []ExternalInput) devstime.Duration

	// Confluent resolves a tie between a pending internal event and one
	// or more pending external events at the same instant.
	Confluent(t devstime.Time, evts []ExternalInput) Confluence

	// Request answers a synchronous query within the current instant.
	Request(t devstime.Time, req RequestInput) []Reply

	// Observation is a pure read of current state for a named port,
	// performed by a View.
	Observation(t devstime.Time, port string) Value

	// Finish is called once at simulation end, after the last
	// transition, before FinishViews fire.
	Finish(t devstime.Time)
}

// ExternalInput is an inbound external event as seen from inside the
// receiving model: just the local port name and attributes — the core's
// routing has already resolved source/destination.
type ExternalInput struct {
	Port string
	Attr devsevent.Attrs
}

// RequestInput is an inbound request event as seen from inside the
// receiving model.
type RequestInput struct {
	Port string
	Attr devsevent.Attrs
}

// Base provides the default Confluent policy: the default returned by
// the base class is EXTERNAL. Embed Base in a concrete
// model to inherit it, and override Confluent only when the model
// actually needs a different tie-break.
type Base struct{}

// Confluent returns ConfluentExternal unconditionally.
func (Base) Confluent(devstime.Time, []ExternalInput) Confluence {
	return ConfluentExternal
}
