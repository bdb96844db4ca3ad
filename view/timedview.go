package view

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// TimedView self-schedules an observation at a fixed period for every
// port it subscribes.
type TimedView struct {
	base

	period devstime.Duration
}

// NewTimedView creates a TimedView with the given period, writing
// through writer.
func NewTimedView(name string, writer StreamWriter, period devstime.Duration) *TimedView {
	return &TimedView{
		base:   makeBase(name, writer),
		period: period,
	}
}

// Kind implements View.
func (v *TimedView) Kind() Kind { return KindTimed }

// Subscribe registers sub and schedules its first observation at now:
// on registration at time t0, it schedules an ObservationEvent at t0.
func (v *TimedView) Subscribe(sub Subscription, now devstime.Time) *devsevent.ObservationEvent {
	if !v.addSubscription(sub) {
		return nil
	}

	return &devsevent.ObservationEvent{
		Time:   now,
		Target: sub.Sim,
		Port:   sub.Port,
		View:   v.Name(),
	}
}

// Process writes value and, if (evt.Target, evt.Port) is still
// subscribed, returns the next tick at evt.Time + period.
func (v *TimedView) Process(evt devsevent.ObservationEvent, value atomicmodel.Value) *devsevent.ObservationEvent {
	_ = v.writer.Process(evt, value)

	set, ok := v.ports[evt.Target]
	if !ok {
		return nil
	}

	if _, stillSubscribed := set[evt.Port]; !stillSubscribed {
		return nil
	}

	return &devsevent.ObservationEvent{
		Time:   evt.Time.Advance(v.period),
		Target: evt.Target,
		Port:   evt.Port,
		View:   v.Name(),
	}
}
