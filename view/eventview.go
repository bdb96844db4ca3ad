package view

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// EventView writes an observation whenever the Coordinator drives one
// through Process — after every internal/external/confluent transition
// of a subscribed simulator — and never self-schedules.
type EventView struct {
	base
}

// NewEventView creates an EventView writing through writer.
func NewEventView(name string, writer StreamWriter) *EventView {
	return &EventView{base: makeBase(name, writer)}
}

// Kind implements View.
func (v *EventView) Kind() Kind { return KindEvent }

// Subscribe registers sub. EventView never self-schedules, so it always
// returns nil.
func (v *EventView) Subscribe(sub Subscription, _ devstime.Time) *devsevent.ObservationEvent {
	v.addSubscription(sub)
	return nil
}

// Process writes value and never produces a follow-up event.
func (v *EventView) Process(evt devsevent.ObservationEvent, value atomicmodel.Value) *devsevent.ObservationEvent {
	_ = v.writer.Process(evt, value)
	return nil
}
