package coordinator_test

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/coordinator"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
	"github.com/sarchlab/devscore/graph"
)

// recordingWriter is a view.StreamWriter stub that tracks whether it was
// opened/closed, for coordinator tests that just need to assert a view
// fired without inspecting every observed value.
type recordingWriter struct {
	opened bool
	closed bool
	rows   []atomicmodel.Value
}

func (w *recordingWriter) Open(string, string, string, map[string]string, devstime.Time) error {
	w.opened = true
	return nil
}

func (w *recordingWriter) Process(_ devsevent.ObservationEvent, v atomicmodel.Value) error {
	w.rows = append(w.rows, v)
	return nil
}

func (w *recordingWriter) Close(devstime.Time) error {
	w.closed = true
	return nil
}

// tickerModel self-schedules every period instants and emits its tick
// count on "out".
type tickerModel struct {
	atomicmodel.Base

	period devstime.Duration
	ticks  int
	limit  int
}

func (m *tickerModel) Init(devstime.Time, atomicmodel.InitEvents) devstime.Duration {
	return m.period
}

func (m *tickerModel) Output(devstime.Time) []atomicmodel.Reply {
	return []atomicmodel.Reply{{Port: "out", Attr: map[string]interface{}{"ticks": m.ticks}}}
}

func (m *tickerModel) Internal(devstime.Time) devstime.Duration {
	m.ticks++
	if m.ticks >= m.limit {
		return devstime.Duration(devstime.Infinity)
	}

	return m.period
}

func (m *tickerModel) External(devstime.Time, []atomicmodel.ExternalInput) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}
func (m *tickerModel) Request(devstime.Time, atomicmodel.RequestInput) []atomicmodel.Reply {
	return nil
}
func (m *tickerModel) Observation(devstime.Time, string) atomicmodel.Value {
	return atomicmodel.IntValue(m.ticks)
}
func (m *tickerModel) Finish(devstime.Time) {}

// sinkModel never self-schedules; it records every attribute it
// receives on "in" so a test can assert on routing.
type sinkModel struct {
	atomicmodel.Base

	received []map[string]interface{}
}

func (m *sinkModel) Init(devstime.Time, atomicmodel.InitEvents) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}
func (m *sinkModel) Output(devstime.Time) []atomicmodel.Reply { return nil }
func (m *sinkModel) Internal(devstime.Time) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}

func (m *sinkModel) External(_ devstime.Time, evts []atomicmodel.ExternalInput) devstime.Duration {
	for _, e := range evts {
		m.received = append(m.received, e.Attr)
	}

	return devstime.Duration(devstime.Infinity)
}

func (m *sinkModel) Request(devstime.Time, atomicmodel.RequestInput) []atomicmodel.Reply {
	return nil
}
func (m *sinkModel) Observation(devstime.Time, string) atomicmodel.Value {
	return atomicmodel.IntValue(len(m.received))
}
func (m *sinkModel) Finish(devstime.Time) {}

// confluentModel records which transition ran, to test Confluent's
// tie-break and the DropConfluentExternals policy. Its first Internal
// call self-reschedules at the same instant (ta=0), so a same-time
// External routed in from elsewhere during that same Step lands
// alongside its second Internal call on the next pop, producing a
// genuine confluent collision.
type confluentModel struct {
	atomicmodel.Base

	policy   atomicmodel.Confluence
	calls    *[]string
	initTA   devstime.Duration
	finishTA devstime.Duration

	internalCalls int
}

func (m *confluentModel) Init(devstime.Time, atomicmodel.InitEvents) devstime.Duration {
	return m.initTA
}
func (m *confluentModel) Output(devstime.Time) []atomicmodel.Reply { return nil }

func (m *confluentModel) Internal(devstime.Time) devstime.Duration {
	*m.calls = append(*m.calls, "internal")
	m.internalCalls++

	if m.internalCalls == 1 {
		return devstime.Duration(0)
	}

	return m.finishTA
}

func (m *confluentModel) External(devstime.Time, []atomicmodel.ExternalInput) devstime.Duration {
	*m.calls = append(*m.calls, "external")
	return m.finishTA
}

func (m *confluentModel) Confluent(devstime.Time, []atomicmodel.ExternalInput) atomicmodel.Confluence {
	return m.policy
}

func (m *confluentModel) Request(devstime.Time, atomicmodel.RequestInput) []atomicmodel.Reply {
	return nil
}
func (m *confluentModel) Observation(devstime.Time, string) atomicmodel.Value { return nil }
func (m *confluentModel) Finish(devstime.Time)                                {}

// requesterModel issues nothing itself; replyModel answers a Request
// with a reply routed back within the same instant.
type replyModel struct {
	atomicmodel.Base

	answer int
}

func (m *replyModel) Init(devstime.Time, atomicmodel.InitEvents) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}
func (m *replyModel) Output(devstime.Time) []atomicmodel.Reply { return nil }
func (m *replyModel) Internal(devstime.Time) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}
func (m *replyModel) External(devstime.Time, []atomicmodel.ExternalInput) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}

func (m *replyModel) Request(_ devstime.Time, req atomicmodel.RequestInput) []atomicmodel.Reply {
	return []atomicmodel.Reply{{Port: "answer", Attr: map[string]interface{}{"value": m.answer, "asked": req.Port}}}
}
func (m *replyModel) Observation(devstime.Time, string) atomicmodel.Value { return nil }
func (m *replyModel) Finish(devstime.Time)                                {}

// executiveModel deletes a named victim atomic model during its own
// Internal transition.
type executiveModel struct {
	atomicmodel.Base

	exec   coordinator.Executive
	parent *graph.CoupledNode
	victim string
}

func (m *executiveModel) Init(devstime.Time, atomicmodel.InitEvents) devstime.Duration { return 3 }
func (m *executiveModel) Output(devstime.Time) []atomicmodel.Reply                     { return nil }

func (m *executiveModel) Internal(devstime.Time) devstime.Duration {
	_ = m.exec.DeleteModel(m.parent, m.victim)
	return devstime.Duration(devstime.Infinity)
}

func (m *executiveModel) External(devstime.Time, []atomicmodel.ExternalInput) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}
func (m *executiveModel) Confluent(devstime.Time, []atomicmodel.ExternalInput) atomicmodel.Confluence {
	return atomicmodel.ConfluentInternal
}
func (m *executiveModel) Request(devstime.Time, atomicmodel.RequestInput) []atomicmodel.Reply {
	return nil
}
func (m *executiveModel) Observation(devstime.Time, string) atomicmodel.Value { return nil }
func (m *executiveModel) Finish(devstime.Time)                                {}

// victimModel records whether its Internal transition ever ran, so a
// test can assert its pending internal event was cancelled by deletion.
type victimModel struct {
	atomicmodel.Base

	internalRan *bool
}

func (m *victimModel) Init(devstime.Time, atomicmodel.InitEvents) devstime.Duration { return 3 }
func (m *victimModel) Output(devstime.Time) []atomicmodel.Reply                     { return nil }

func (m *victimModel) Internal(devstime.Time) devstime.Duration {
	*m.internalRan = true
	return devstime.Duration(devstime.Infinity)
}

func (m *victimModel) External(devstime.Time, []atomicmodel.ExternalInput) devstime.Duration {
	return devstime.Duration(devstime.Infinity)
}
func (m *victimModel) Request(devstime.Time, atomicmodel.RequestInput) []atomicmodel.Reply {
	return nil
}
func (m *victimModel) Observation(devstime.Time, string) atomicmodel.Value { return nil }
func (m *victimModel) Finish(devstime.Time)                                {}
