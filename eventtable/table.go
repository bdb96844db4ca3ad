// Package eventtable implements the EventTable: a priority structure
// keyed by simulated time that produces, for the current minimum time,
// the CompleteBag the Coordinator dispatches one instant at a time.
//
// The implementation backs the primary (internal/external/request) queue
// with a container/heap (akita's sim/eventqueue.go
// eventHeap pattern, generalized to carry a simulator-mention index for
// O(log N) deletion), and keeps a second, independent heap for
// observation events, mirroring the primary/secondary queue split in
// sim/timing/serialengine.go.
package eventtable

import (
	"container/heap"
	"sync"

	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
)

// Table is the EventTable: a time-ordered priority queue of bags of
// pending events, one bag per scheduled instant.
type Table struct {
	mu sync.Mutex

	primary     entryHeap
	observation obsHeap

	bySim map[devsevent.SimulatorID]map[*entry]struct{}

	seq uint64
}

// New creates an empty EventTable.
func New() *Table {
	t := &Table{
		bySim: make(map[devsevent.SimulatorID]map[*entry]struct{}),
	}
	heap.Init(&t.primary)
	heap.Init(&t.observation)

	return t
}

func (t *Table) nextSeq() uint64 {
	t.seq++
	return t.seq
}

func (t *Table) index(e *entry) {
	for _, sim := range e.mentions {
		set, ok := t.bySim[sim]
		if !ok {
			set = make(map[*entry]struct{})
			t.bySim[sim] = set
		}

		set[e] = struct{}{}
	}
}

func (t *Table) unindex(e *entry) {
	for _, sim := range e.mentions {
		set := t.bySim[sim]
		delete(set, e)

		if len(set) == 0 {
			delete(t.bySim, sim)
		}
	}
}

// PutInternal schedules an InternalEvent. Its time must equal the
// target Simulator's tN (spec invariant 2); the Coordinator, which owns
// tN, is responsible for upholding that, not the table.
func (t *Table) PutInternal(e devsevent.InternalEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ent := &entry{
		time:     e.Time,
		seq:      t.nextSeq(),
		kind:     devsevent.KindInternal,
		internal: &e,
		mentions: []devsevent.SimulatorID{e.Target},
	}

	heap.Push(&t.primary, ent)
	t.index(ent)
}

// PutExternal schedules an ExternalEvent.
func (t *Table) PutExternal(e devsevent.ExternalEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ent := &entry{
		time:     e.Time,
		seq:      t.nextSeq(),
		kind:     devsevent.KindExternal,
		external: &e,
		mentions: mentionsOf(e.Src.Model, e.Dst.Model),
	}

	heap.Push(&t.primary, ent)
	t.index(ent)
}

// PutRequest schedules a RequestEvent.
func (t *Table) PutRequest(e devsevent.RequestEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ent := &entry{
		time:     e.Time,
		seq:      t.nextSeq(),
		kind:     devsevent.KindRequest,
		request:  &e,
		mentions: mentionsOf(e.Src.Model, e.Dst.Model),
	}

	heap.Push(&t.primary, ent)
	t.index(ent)
}

// PutObservation schedules an ObservationEvent into the separate
// observation sub-queue.
func (t *Table) PutObservation(e devsevent.ObservationEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	oe := &obsEntry{
		time:  e.Time,
		seq:   t.nextSeq(),
		event: e,
	}

	heap.Push(&t.observation, oe)
}

func mentionsOf(src, dst devsevent.SimulatorID) []devsevent.SimulatorID {
	if src == dst {
		return []devsevent.SimulatorID{src}
	}

	return []devsevent.SimulatorID{src, dst}
}

// TopTime returns the earliest scheduled time across both the primary
// and observation queues, or devstime.Infinity if both are empty.
func (t *Table) TopTime() devstime.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.topTimeLocked()
}

func (t *Table) topTimeLocked() devstime.Time {
	top := devstime.Infinity

	if len(t.primary) > 0 {
		top = devstime.Min(top, t.primary[0].time)
	}

	if len(t.observation) > 0 {
		top = devstime.Min(top, t.observation[0].time)
	}

	return top
}

// Empty reports whether the table holds no pending events at all.
func (t *Table) Empty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.primary) == 0 && len(t.observation) == 0
}

// PopBag pops every event — transition and observation — whose time
// equals the current minimum, partitioned per target Simulator. If the
// table is empty, it returns an empty CompleteBag at devstime.Infinity.
func (t *Table) PopBag() *devsevent.CompleteBag {
	t.mu.Lock()
	defer t.mu.Unlock()

	cb := devsevent.NewCompleteBag()

	now := t.topTimeLocked()
	cb.Time = now

	if now.IsInfinite() {
		return cb
	}

	for len(t.primary) > 0 && t.primary[0].time == now {
		ent := heap.Pop(&t.primary).(*entry)
		t.unindex(ent)

		switch ent.kind {
		case devsevent.KindInternal:
			cb.AddInternal(*ent.internal)
		case devsevent.KindExternal:
			cb.AddExternal(*ent.external)
		case devsevent.KindRequest:
			cb.AddRequest(*ent.request)
		}
	}

	for len(t.observation) > 0 && t.observation[0].time == now {
		oe := heap.Pop(&t.observation).(*obsEntry)
		cb.Observations = append(cb.Observations, oe.event)
	}

	return cb
}

// CancelInternal removes sim's pending InternalEvent, if any. Used by
// the Coordinator before an external or confluent-external transition
// recomputes tN, upholding the invariant that at most one InternalEvent
// per Simulator is ever pending and its time always equals that
// Simulator's tN.
func (t *Table) CancelInternal(sim devsevent.SimulatorID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for e := range t.bySim[sim] {
		if e.kind == devsevent.KindInternal {
			if e.index >= 0 {
				heap.Remove(&t.primary, e.index)
			}

			t.unindex(e)

			return
		}
	}
}

// DeleteEventsFor removes every pending event mentioning sim, as either
// source or destination, from both queues. Called during two-phase
// model deletion, before the Simulator is detached.
func (t *Table) DeleteEventsFor(sim devsevent.SimulatorID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.bySim[sim]
	if ok {
		victims := make([]*entry, 0, len(set))
		for e := range set {
			victims = append(victims, e)
		}

		for _, e := range victims {
			if e.index >= 0 {
				heap.Remove(&t.primary, e.index)
			}

			t.unindex(e)
		}
	}

	kept := t.observation[:0]

	for _, oe := range t.observation {
		if oe.event.Target == sim {
			continue
		}

		kept = append(kept, oe)
	}

	t.observation = kept
	heap.Init(&t.observation)
}
