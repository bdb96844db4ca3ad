// Package devsevent defines the DEVS event family: InternalEvent,
// ExternalEvent, RequestEvent and ObservationEvent, plus the per-simulator
// Bag and the per-instant CompleteBag that the EventTable hands to the
// Coordinator.
package devsevent

import "github.com/sarchlab/devscore/devstime"

// SimulatorID identifies the Simulator an event targets or originates
// from. It is a non-owning handle: events never hold a pointer to a
// Simulator, so a deleted Simulator can never be dereferenced through a
// stale event (see the two-phase deletion policy in package coordinator).
type SimulatorID string

// Port is a (model-reference, port-name) pair. Port names live in a
// single model's namespace.
type Port struct {
	Model SimulatorID
	Name  string
}

// Attrs is the opaque attribute map carried by external and request
// events: name -> value. The value type is left as interface{} because
// the core never interprets attribute payloads — only the atomic models
// on either end of a connection do.
type Attrs map[string]interface{}

// Kind discriminates the event family without resorting to a type
// hierarchy.
type Kind int

// The four event kinds.
const (
	KindInternal Kind = iota
	KindExternal
	KindRequest
	KindObservation
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindExternal:
		return "external"
	case KindRequest:
		return "request"
	case KindObservation:
		return "observation"
	default:
		return "unknown"
	}
}

// InternalEvent is a model's self-scheduled transition. It carries no
// payload: the atomic model already knows what to do from its own state.
type InternalEvent struct {
	Time   devstime.Time
	Target SimulatorID
}

// ExternalEvent carries an attribute map from a source port to a
// destination port, scheduled to be delivered at Time.
type ExternalEvent struct {
	Time devstime.Time
	Src  Port
	Dst  Port
	Attr Attrs
}

// RequestEvent is like ExternalEvent but demands a synchronous reply
// within the same time instant (see Coordinator's request path).
type RequestEvent struct {
	Time devstime.Time
	Src  Port
	Dst  Port
	Attr Attrs
}

// ObservationEvent targets one Simulator's port on behalf of a named
// View, at a given time.
type ObservationEvent struct {
	Time   devstime.Time
	Target SimulatorID
	Port   string
	View   string
}
