// Package simulator implements the wrapper that owns exactly one
// atomic model instance, its local clock (tL, tN), and a back-pointer
// to its structural node for connection resolution.
package simulator

import (
	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/naming"
)

// Simulator wraps one atomic model instance.
type Simulator struct {
	naming.Base

	id    devsevent.SimulatorID
	model atomicmodel.Model
	node  *graph.AtomicNode

	tL devstime.Time // last-transition time
	tN devstime.Time // next-internal time

	cleared bool
}

// New creates a Simulator for model, bound to structural node n.
func New(id devsevent.SimulatorID, n *graph.AtomicNode, model atomicmodel.Model) *Simulator {
	return &Simulator{
		Base:  naming.MakeBase(n.Name()),
		id:    id,
		model: model,
		node:  n,
		tN:    devstime.Infinity,
	}
}

// ID returns the Simulator's stable identifier, used by events and the
// EventTable's per-simulator index.
func (s *Simulator) ID() devsevent.SimulatorID {
	return s.id
}

// Node returns the structural node backing this Simulator, used by the
// Coordinator to resolve outgoing connections.
func (s *Simulator) Node() *graph.AtomicNode {
	return s.node
}

// Model returns the wrapped atomic model.
func (s *Simulator) Model() atomicmodel.Model {
	return s.model
}

// TL returns the time of this Simulator's last transition.
func (s *Simulator) TL() devstime.Time {
	return s.tL
}

// TN returns the time of this Simulator's next scheduled internal
// transition (devstime.Infinity if none is scheduled).
func (s *Simulator) TN() devstime.Time {
	return s.tN
}

// Init calls the model's Init callback and records the resulting tL/tN.
func (s *Simulator) Init(t devstime.Time, init atomicmodel.InitEvents) {
	ta := s.model.Init(t, init)
	s.tL = t
	s.tN = t.Advance(ta)
}

// ApplyTimeAdvance updates tL/tN after a transition at time t returned
// a new time-advance ta.
func (s *Simulator) ApplyTimeAdvance(t devstime.Time, ta devstime.Duration) {
	s.tL = t
	s.tN = t.Advance(ta)
}

// Cleared reports whether Clear has already run on this Simulator.
func (s *Simulator) Cleared() bool {
	return s.cleared
}

// Clear breaks the Simulator's reference to its atomic model and
// structural node so that no inbound reference can be dereferenced
// after the Simulator is queued for deletion, per the two-phase delete
// policy. It is idempotent.
func (s *Simulator) Clear() {
	if s.cleared {
		return
	}

	s.cleared = true
	s.model = nil
	s.node = nil
	s.tN = devstime.Infinity
}
