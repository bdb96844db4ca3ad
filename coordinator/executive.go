package coordinator

import (
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/factory"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/simerr"
	"github.com/sarchlab/devscore/view"
)

// Executive is the dynamic-structure API, safe to call mid-run from
// within an atomic model's own callback: creation only
// ever inserts events into the EventTable (at the current instant or
// later) or into the observation queue, never into the bag being
// drained, and deletion defers destruction via the two-phase protocol.
type Executive interface {
	AddDynamics(name string, ctor factory.DynamicsCtor) error
	AddCondition(c factory.Condition) error
	AddObservable(o factory.Observable) error
	CreateModel(parent *graph.CoupledNode, name, dynamics string, conditions []string, observable string) (devsevent.SimulatorID, error)
	CreateModelFromClass(parent *graph.CoupledNode, className, name string) (graph.Node, error)
	DeleteModel(parent *graph.CoupledNode, name string) error
	Subscribe(sim devsevent.SimulatorID, port, viewName string) error
}

// AddDynamics registers a reusable Dynamics constructor, mirroring
// VLE's Coordinator::addPermanent(vpz::Dynamic).
func (c *Coordinator) AddDynamics(name string, ctor factory.DynamicsCtor) error {
	return c.factory.AddDynamics(name, ctor)
}

// AddCondition registers a reusable Condition, mirroring VLE's
// Coordinator::addPermanent(vpz::Condition).
func (c *Coordinator) AddCondition(cond factory.Condition) error {
	return c.factory.AddCondition(cond)
}

// AddObservable registers a reusable Observable, mirroring VLE's
// Coordinator::addPermanent(vpz::Observable).
func (c *Coordinator) AddObservable(o factory.Observable) error {
	return c.factory.AddObservable(o)
}

// buildAndRegister resolves conditions into InitEvents, constructs the
// Dynamics instance, attaches it to the graph, and registers it with
// the Coordinator, without running Init — shared by RegisterModel
// (initial project assembly) and CreateModel (mid-run Executive calls).
func (c *Coordinator) buildAndRegister(
	parent *graph.CoupledNode,
	name, dynamics string,
	conditions []string,
	observable string,
) (*factory.Built, error) {
	built, err := c.factory.CreateModel(c.ids, c.graph, parent, name, dynamics, conditions, observable)
	if err != nil {
		return nil, err
	}

	c.registerSimulator(built.Simulator)

	return built, nil
}

// RegisterModel builds one atomic model under parent without
// initializing it, for use while assembling the initial project graph
// before the Coordinator's top-level Init pass runs. Init will visit
// it along with every other Simulator once the run starts.
func (c *Coordinator) RegisterModel(
	parent *graph.CoupledNode,
	name, dynamics string,
	conditions []string,
	observable string,
) (devsevent.SimulatorID, error) {
	built, err := c.buildAndRegister(parent, name, dynamics, conditions, observable)
	if err != nil {
		return "", err
	}

	return built.Simulator.ID(), nil
}

// CreateModel builds and registers one atomic model under parent,
// mirroring VLE's Coordinator::createModel, and initializes it
// immediately at the current time — used mid-run by an Executive model
// growing the graph, so the new Simulator's first InternalEvent is
// scheduled like any other's.
func (c *Coordinator) CreateModel(
	parent *graph.CoupledNode,
	name, dynamics string,
	conditions []string,
	observable string,
) (devsevent.SimulatorID, error) {
	built, err := c.buildAndRegister(parent, name, dynamics, conditions, observable)
	if err != nil {
		return "", err
	}

	c.logger.Debugf("created model %q (dynamics=%q) at t=%v", name, dynamics, c.currentTime)
	c.initAndSchedule(built)

	return built.Simulator.ID(), nil
}

// initAndSchedule runs built.Simulator's Init callback at the current
// time and schedules its first InternalEvent if it isn't infinite,
// shared by CreateModel and CreateModelFromClass.
func (c *Coordinator) initAndSchedule(built *factory.Built) {
	built.Simulator.Init(c.currentTime, built.Init)

	if !built.Simulator.TN().IsInfinite() {
		c.table.PutInternal(devsevent.InternalEvent{
			Time:   built.Simulator.TN(),
			Target: built.Simulator.ID(),
		})
	}
}

// CreateModelFromClass clones a registered sub-graph template under
// parent, mirroring VLE's Coordinator::createModelFromClass. Every
// atomic model the template builds is registered and initialized the
// same way CreateModel does.
func (c *Coordinator) CreateModelFromClass(parent *graph.CoupledNode, className, name string) (graph.Node, error) {
	built, root, err := c.factory.CreateModelFromClass(c.ids, c.graph, parent, className, name)
	if err != nil {
		return nil, err
	}

	for _, b := range built {
		c.registerSimulator(b.Simulator)
		c.initAndSchedule(b)
	}

	c.logger.Debugf("created model %q from class %q at t=%v", name, className, c.currentTime)

	return root, nil
}

// DeleteModel runs the two-phase deletion protocol: detach every View
// subscription, remove the Simulator's EventTable
// entries, clear its references, and defer the Go-level destruction
// until the current Step's oldToDelete boundary has passed, mirroring
// VLE's delAtomicModel/delCoupledModel.
func (c *Coordinator) DeleteModel(parent *graph.CoupledNode, name string) error {
	child, ok := parent.FindChild(name)
	if !ok {
		return simerr.NewInvalidState("DeleteModel", "model "+name+" not found")
	}

	switch n := child.(type) {
	case *graph.AtomicNode:
		id, ok := c.nodeSim[n]
		if !ok {
			return simerr.NewInvalidState("DeleteModel", "model "+name+" has no simulator")
		}

		c.deleteAtomic(id, n)
		c.graph.DeleteAtomic(n)
	case *graph.CoupledNode:
		removed := c.graph.DeleteCoupled(n)

		for _, atomic := range removed {
			if id, ok := c.nodeSim[atomic]; ok {
				c.deleteAtomic(id, atomic)
			}
		}
	}

	return nil
}

// deleteAtomic runs the Coordinator-owned half of two-phase deletion
// for one Simulator: view detachment, EventTable cleanup, Clear(), and
// queuing for deferred destruction, mirroring VLE's delAtomicModel.
func (c *Coordinator) deleteAtomic(id devsevent.SimulatorID, node *graph.AtomicNode) {
	sim, ok := c.sims[id]
	if !ok {
		return
	}

	for _, name := range c.viewOrder {
		c.views[name].Unsubscribe(id)
	}

	c.table.DeleteEventsFor(id)

	sim.Clear()

	delete(c.sims, id)
	delete(c.nodeSim, node)

	c.deletedSimulators = append(c.deletedSimulators, sim)
	c.toDelete = len(c.deletedSimulators)

	c.logger.Debugf("deleted model %q at t=%v, deferred for destruction", sim.Name(), c.currentTime)
}

// Subscribe attaches (sim, port) to the named View, mirroring VLE's
// Coordinator::addObservableToView, scheduling the View's own
// follow-up event (TimedView's first tick) if it produces one.
func (c *Coordinator) Subscribe(id devsevent.SimulatorID, port, viewName string) error {
	v, ok := c.views[viewName]
	if !ok {
		return simerr.NewStructural("unknown-view", viewName)
	}

	if _, ok := c.sims[id]; !ok {
		return simerr.NewStructural("unknown-simulator", string(id))
	}

	if evt := v.Subscribe(view.Subscription{Sim: id, Port: port}, c.currentTime); evt != nil {
		c.table.PutObservation(*evt)
	}

	return nil
}
