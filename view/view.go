// Package view implements the observation subsystem: TimedView,
// EventView and FinishView, each writing through a StreamWriter.
// Grounded on VLE's devs::View/TimedView/EventView/FinishView
// (original_source/src/vle/devs/Coordinator.cpp's
// buildViews/processEventView/processObservationEvents) and on the
// tracing package's approach for the StreamWriter backends.
package view

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
	"github.com/sarchlab/devscore/naming"
)

// Kind discriminates the three view policies.
type Kind int

// The three view kinds.
const (
	KindTimed Kind = iota
	KindEvent
	KindFinish
)

// Subscription is one (Simulator, port) pair a View observes.
type Subscription struct {
	Sim  devsevent.SimulatorID
	Port string
}

// View is a named observation sink with a firing policy.
type View interface {
	naming.Named
	Kind() Kind

	// Subscribe attaches (sim, port) to the view. It returns a
	// follow-up ObservationEvent to enqueue in the EventTable if the
	// view self-schedules on registration (only TimedView does).
	Subscribe(sub Subscription, now devstime.Time) *devsevent.ObservationEvent

	// Unsubscribe detaches every port of sim from the view, used during
	// two-phase model deletion.
	Unsubscribe(sim devsevent.SimulatorID)

	// Subscriptions returns every (sim, port) pair currently attached,
	// in subscription order.
	Subscriptions() []Subscription

	// PortsFor returns the ports of sim this view currently observes.
	PortsFor(sim devsevent.SimulatorID) []string

	// Process hands a freshly read Value to the view's StreamWriter. It
	// returns a follow-up ObservationEvent to enqueue (TimedView's next
	// tick), or nil.
	Process(evt devsevent.ObservationEvent, value atomicmodel.Value) *devsevent.ObservationEvent

	// Close releases the view's StreamWriter, reporting the simulation's
	// end time to it.
	Close(tEnd devstime.Time) error
}

// base provides the subscription bookkeeping shared by all three view
// kinds.
type base struct {
	naming.Base

	writer StreamWriter

	order []Subscription
	ports map[devsevent.SimulatorID]map[string]struct{}
}

func makeBase(name string, writer StreamWriter) base {
	return base{
		Base:   naming.MakeBase(name),
		writer: writer,
		ports:  make(map[devsevent.SimulatorID]map[string]struct{}),
	}
}

func (b *base) addSubscription(sub Subscription) bool {
	set, ok := b.ports[sub.Sim]
	if !ok {
		set = make(map[string]struct{})
		b.ports[sub.Sim] = set
	}

	if _, exists := set[sub.Port]; exists {
		return false
	}

	set[sub.Port] = struct{}{}
	b.order = append(b.order, sub)

	return true
}

func (b *base) Unsubscribe(sim devsevent.SimulatorID) {
	delete(b.ports, sim)

	kept := b.order[:0]

	for _, s := range b.order {
		if s.Sim != sim {
			kept = append(kept, s)
		}
	}

	b.order = kept
}

func (b *base) Subscriptions() []Subscription {
	out := make([]Subscription, len(b.order))
	copy(out, b.order)

	return out
}

func (b *base) PortsFor(sim devsevent.SimulatorID) []string {
	set, ok := b.ports[sim]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}

	return out
}

func (b *base) Close(tEnd devstime.Time) error {
	return b.writer.Close(tEnd)
}
