package view

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// FinishView writes exactly one observation per subscribed port, at the
// end of the run, driven by the Coordinator's Finish() rather than by
// any EventTable entry.
type FinishView struct {
	base
}

// NewFinishView creates a FinishView writing through writer.
func NewFinishView(name string, writer StreamWriter) *FinishView {
	return &FinishView{base: makeBase(name, writer)}
}

// Kind implements View.
func (v *FinishView) Kind() Kind { return KindFinish }

// Subscribe registers sub. FinishView fires only from the Coordinator's
// end-of-run sweep, so it never self-schedules.
func (v *FinishView) Subscribe(sub Subscription, _ devstime.Time) *devsevent.ObservationEvent {
	v.addSubscription(sub)
	return nil
}

// Process writes value and never produces a follow-up event.
func (v *FinishView) Process(evt devsevent.ObservationEvent, value atomicmodel.Value) *devsevent.ObservationEvent {
	_ = v.writer.Process(evt, value)
	return nil
}
