// Package coordinator implements the single-threaded simulation loop
// that pops the EventTable's next CompleteBag, drains each Simulator's
// bag in confluent/internal/external/request priority order, routes
// produced events through the structural graph, drains observations,
// and runs the two-phase dynamic deletion protocol. Grounded directly
// on VLE's devs::Coordinator (original_source/src/vle/devs/Coordinator.cpp),
// reshaped into Go value types and explicit error returns instead of
// C++ exceptions.
package coordinator

import (
	"fmt"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devslog"
	"github.com/sarchlab/devscore/devstime"
	"github.com/sarchlab/devscore/eventtable"
	"github.com/sarchlab/devscore/factory"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/hooking"
	"github.com/sarchlab/devscore/idgen"
	"github.com/sarchlab/devscore/simerr"
	"github.com/sarchlab/devscore/simulator"
	"github.com/sarchlab/devscore/view"
)

// Driver is the external-loop contract: a Driver initializes the
// Coordinator once, then repeatedly reads NextTime and calls Step
// until NextTime is infinite, then calls Finish.
type Driver interface {
	Init(init map[devsevent.SimulatorID]atomicmodel.InitEvents) error
	NextTime() devstime.Time
	Step() error
	Finish() error
}

// Coordinator is the simulation loop, owning every Simulator, the
// EventTable, the structural graph, the ModelFactory registries, and
// the registered Views.
type Coordinator struct {
	hooking.Base

	table   *eventtable.Table
	graph   *graph.Graph
	factory *factory.ModelFactory
	ids     idgen.Generator
	logger  devslog.Logger

	sims     map[devsevent.SimulatorID]*simulator.Simulator
	simOrder []devsevent.SimulatorID
	nodeSim  map[graph.Node]devsevent.SimulatorID

	views     map[string]view.View
	viewOrder []string

	currentTime devstime.Time

	deletedSimulators []*simulator.Simulator
	toDelete          int

	// DropConfluentExternals controls what happens to the externals
	// collided with an internal event once Confluent resolves to
	// ConfluentInternal: true (the default) discards them for this
	// instant; false re-enqueues them as ordinary external events to be
	// drained on a later Step call.
	DropConfluentExternals bool
}

// New creates an empty Coordinator bound to g and f. ids generates
// Simulator identifiers; logger receives structural/diagnostic
// messages. Neither g, f, ids nor logger may be nil — the Coordinator
// holds no process-wide singleton.
func New(g *graph.Graph, f *factory.ModelFactory, ids idgen.Generator, logger devslog.Logger) *Coordinator {
	return &Coordinator{
		table:                  eventtable.New(),
		graph:                  g,
		factory:                f,
		ids:                    ids,
		logger:                 logger,
		sims:                   make(map[devsevent.SimulatorID]*simulator.Simulator),
		nodeSim:                make(map[graph.Node]devsevent.SimulatorID),
		views:                  make(map[string]view.View),
		DropConfluentExternals: true,
	}
}

// AddView registers v, mirroring VLE's Coordinator::addView. Views must
// be added before Subscribe is called against them.
func (c *Coordinator) AddView(v view.View) error {
	if _, exists := c.views[v.Name()]; exists {
		return simerr.NewStructural("duplicate-view", v.Name())
	}

	c.views[v.Name()] = v
	c.viewOrder = append(c.viewOrder, v.Name())

	return nil
}

// registerSimulator attaches a freshly built Simulator to the
// Coordinator's bookkeeping, mirroring VLE's Coordinator::addModel.
func (c *Coordinator) registerSimulator(sim *simulator.Simulator) {
	c.sims[sim.ID()] = sim
	c.simOrder = append(c.simOrder, sim.ID())
	c.nodeSim[sim.Node()] = sim.ID()
}

// Graph returns the structural graph this Coordinator is bound to, for
// project-loading code to assemble the initial model tree before the
// run starts.
func (c *Coordinator) Graph() *graph.Graph {
	return c.graph
}

// Init runs the initialization pass: every registered Simulator's
// Init callback fires with the InitEvents named for it (zero value if
// absent), and its first InternalEvent is scheduled.
func (c *Coordinator) Init(init map[devsevent.SimulatorID]atomicmodel.InitEvents) error {
	c.toDelete = 0

	for _, id := range c.simOrder {
		sim := c.sims[id]

		sim.Init(devstime.Zero, init[id])

		if !sim.TN().IsInfinite() {
			c.table.PutInternal(devsevent.InternalEvent{Time: sim.TN(), Target: sim.ID()})
		}
	}

	c.currentTime = devstime.Zero

	return nil
}

// CurrentTime returns the time of the most recently processed bag,
// satisfying monitor.Inspectable for read-only introspection.
func (c *Coordinator) CurrentTime() devstime.Time {
	return c.currentTime
}

// SimulatorNames returns the names of every currently live Simulator,
// satisfying monitor.Inspectable.
func (c *Coordinator) SimulatorNames() []string {
	names := make([]string, 0, len(c.sims))

	for _, id := range c.simOrder {
		if sim, ok := c.sims[id]; ok {
			names = append(names, sim.Name())
		}
	}

	return names
}

// ViewNames returns the names of every registered View, satisfying
// monitor.Inspectable.
func (c *Coordinator) ViewNames() []string {
	names := make([]string, len(c.viewOrder))
	copy(names, c.viewOrder)

	return names
}

// NextTime returns the EventTable's next scheduled time, or
// devstime.Infinity once nothing remains pending — the Driver's signal
// to stop calling Step.
func (c *Coordinator) NextTime() devstime.Time {
	return c.table.TopTime()
}

// Step pops the next CompleteBag and drains it, mirroring VLE's
// Coordinator::run(): oldToDelete bounds which deferred Simulators are
// finally destroyed this step; every per-Simulator bag is drained in
// confluent/internal/external/request priority order; observations
// drain last.
func (c *Coordinator) Step() error {
	oldToDelete := c.toDelete

	bag := c.table.PopBag()
	if !bag.Empty() {
		c.currentTime = bag.Time
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosBeforeStep, Item: c.currentTime})
	}

	for {
		id, modelBag, ok := bag.Next()
		if !ok {
			break
		}

		sim, known := c.sims[id]
		if !known || sim.Cleared() {
			*modelBag = devsevent.Bag{}
			continue
		}

		if err := c.drainBag(sim, modelBag); err != nil {
			return err
		}
	}

	if oldToDelete > 0 {
		c.logger.Debugf("releasing %d simulator(s) deferred for deletion", oldToDelete)

		c.deletedSimulators = c.deletedSimulators[oldToDelete:]
		c.toDelete = len(c.deletedSimulators)
	}

	c.processObservations(bag.Observations)

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosAfterStep, Item: c.currentTime})
	}

	return nil
}

// drainBag runs every event queued for sim at the current instant,
// applying confluent/internal/external/request priority.
func (c *Coordinator) drainBag(sim *simulator.Simulator, bag *devsevent.Bag) error {
	for !bag.Empty() {
		switch {
		case bag.HasInternal() && bag.HasExternals():
			if err := c.drainConfluent(sim, bag); err != nil {
				return err
			}
		case bag.HasInternal():
			bag.TakeInternal()

			if err := c.processInternalEvent(sim); err != nil {
				return err
			}
		case bag.HasExternals():
			externals := bag.TakeExternals()

			if err := c.processExternalEvents(sim, externals); err != nil {
				return err
			}
		default:
			requests := bag.TakeRequests()

			if err := c.processRequestEvents(sim, requests); err != nil {
				return err
			}
		}
	}

	return nil
}

// drainConfluent resolves the collision between sim's pending internal
// event and its pending externals via Model.Confluent.
func (c *Coordinator) drainConfluent(sim *simulator.Simulator, bag *devsevent.Bag) error {
	inputs := toExternalInputs(bag.Externals)

	confluence := sim.Model().Confluent(c.currentTime, inputs)

	bag.TakeInternal()
	externals := bag.TakeExternals()

	switch confluence {
	case atomicmodel.ConfluentInternal:
		if !c.DropConfluentExternals {
			c.redispatchExternals(externals)
		}

		return c.processInternalEvent(sim)
	default:
		return c.processExternalEvents(sim, externals)
	}
}

// redispatchExternals re-enqueues externals as ordinary events at the
// current time, so they drain on a later Step call rather than being
// discarded, when DropConfluentExternals is false.
func (c *Coordinator) redispatchExternals(externals []devsevent.ExternalEvent) {
	for _, e := range externals {
		c.table.PutExternal(e)
	}
}

func toExternalInputs(externals []devsevent.ExternalEvent) []atomicmodel.ExternalInput {
	inputs := make([]atomicmodel.ExternalInput, len(externals))
	for i, e := range externals {
		inputs[i] = atomicmodel.ExternalInput{Port: e.Dst.Name, Attr: e.Attr}
	}

	return inputs
}

// processInternalEvent runs Output then the Internal transition,
// reschedules sim's next InternalEvent, and fires EventViews, mirroring
// VLE's processInternalEvent.
func (c *Coordinator) processInternalEvent(sim *simulator.Simulator) (err error) {
	defer func() { err = recoverModelFailure(sim, recover(), err) }()

	now := c.currentTime

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosBeforeTransition, Item: sim.Name(), Detail: "internal"})
		defer c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosAfterTransition, Item: sim.Name(), Detail: "internal"})
	}

	replies := sim.Model().Output(now)
	c.route(sim, replies)

	ta := sim.Model().Internal(now)
	sim.ApplyTimeAdvance(now, ta)

	if !sim.TN().IsInfinite() {
		c.table.PutInternal(devsevent.InternalEvent{Time: sim.TN(), Target: sim.ID()})
	}

	c.processEventView(sim, now)

	return nil
}

// processExternalEvents runs the External transition over every
// externally-addressed event in this instant, mirroring VLE's
// processExternalEvents. It cancels sim's stale pending InternalEvent
// first, upholding the "e.time == S.tN" invariant.
func (c *Coordinator) processExternalEvents(sim *simulator.Simulator, externals []devsevent.ExternalEvent) (err error) {
	defer func() { err = recoverModelFailure(sim, recover(), err) }()

	now := c.currentTime

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosBeforeTransition, Item: sim.Name(), Detail: "external"})
		defer c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosAfterTransition, Item: sim.Name(), Detail: "external"})
	}

	c.table.CancelInternal(sim.ID())

	ta := sim.Model().External(now, toExternalInputs(externals))
	sim.ApplyTimeAdvance(now, ta)

	if !sim.TN().IsInfinite() {
		c.table.PutInternal(devsevent.InternalEvent{Time: sim.TN(), Target: sim.ID()})
	}

	c.processEventView(sim, now)

	return nil
}

// processRequestEvents answers every pending synchronous request in
// this instant, dispatching each reply immediately, mirroring VLE's
// processRequestEvents.
func (c *Coordinator) processRequestEvents(sim *simulator.Simulator, requests []devsevent.RequestEvent) (err error) {
	defer func() { err = recoverModelFailure(sim, recover(), err) }()

	now := c.currentTime

	for _, req := range requests {
		replies := sim.Model().Request(now, atomicmodel.RequestInput{Port: req.Dst.Name, Attr: req.Attr})
		c.route(sim, replies)
	}

	return nil
}

func recoverModelFailure(sim *simulator.Simulator, r interface{}, err error) error {
	if r == nil {
		return err
	}

	if e, ok := r.(error); ok {
		return simerr.NewModelFailure(sim.Name(), e)
	}

	return simerr.NewModelFailure(sim.Name(), fmt.Errorf("%v", r))
}

// route dispatches replies emitted by sim's Output or Request callback
// to every structurally connected destination, mirroring VLE's
// dispatchExternalEvent: replies crossing a request connection
// (graph.ConnRequest) are scheduled as requests, everything else as
// externals, both at the current time.
func (c *Coordinator) route(sim *simulator.Simulator, replies []atomicmodel.Reply) {
	for _, reply := range replies {
		targets := c.graph.TargetsOf(sim.Node(), reply.Port)

		for _, target := range targets {
			dstID, ok := c.nodeSim[target.Node]
			if !ok {
				continue
			}

			src := devsevent.Port{Model: sim.ID(), Name: reply.Port}
			dst := devsevent.Port{Model: dstID, Name: target.Name}

			if target.Kind == graph.ConnRequest {
				c.table.PutRequest(devsevent.RequestEvent{Time: c.currentTime, Src: src, Dst: dst, Attr: reply.Attr})
				continue
			}

			c.table.PutExternal(devsevent.ExternalEvent{Time: c.currentTime, Src: src, Dst: dst, Attr: reply.Attr})
		}
	}
}

// processEventView fires every EventView subscribed to sim, mirroring
// VLE's processEventView, evaluated once per transition (internal or
// external) rather than per output event.
func (c *Coordinator) processEventView(sim *simulator.Simulator, now devstime.Time) {
	for _, name := range c.viewOrder {
		v := c.views[name]
		if v.Kind() != view.KindEvent {
			continue
		}

		for _, port := range v.PortsFor(sim.ID()) {
			value := sim.Model().Observation(now, port)

			evt := devsevent.ObservationEvent{Time: now, Target: sim.ID(), Port: port, View: name}
			if follow := v.Process(evt, value); follow != nil {
				c.table.PutObservation(*follow)
			}
		}
	}
}

// processObservations drains the CompleteBag's observation entries,
// mirroring VLE's processObservationEvents: each reads the addressed
// Simulator's current value and hands it to the named View, which may
// in turn schedule its own follow-up observation (TimedView's cadence).
func (c *Coordinator) processObservations(events []devsevent.ObservationEvent) {
	if len(events) > 0 && c.NumHooks() > 0 {
		c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosBeforeObservation, Item: len(events)})
		defer c.InvokeHook(hooking.Ctx{Domain: c, Pos: hooking.PosAfterObservation, Item: len(events)})
	}

	for _, evt := range events {
		sim, ok := c.sims[evt.Target]
		if !ok || sim.Cleared() {
			continue
		}

		v, ok := c.views[evt.View]
		if !ok {
			continue
		}

		value := sim.Model().Observation(evt.Time, evt.Port)

		if follow := v.Process(evt, value); follow != nil {
			c.table.PutObservation(*follow)
		}
	}
}

// Finish runs the end-of-run sweep: every surviving Simulator's Finish
// callback, then every FinishView fires once per subscribed port, then
// every View is closed, mirroring VLE's Coordinator::finish().
func (c *Coordinator) Finish() error {
	c.logger.Infof("finishing run at t=%v with %d live simulator(s)", c.currentTime, len(c.sims))

	for _, id := range c.simOrder {
		sim, ok := c.sims[id]
		if !ok {
			continue
		}

		sim.Model().Finish(c.currentTime)
	}

	for _, name := range c.viewOrder {
		v := c.views[name]
		if v.Kind() != view.KindFinish {
			continue
		}

		for _, sub := range v.Subscriptions() {
			sim, ok := c.sims[sub.Sim]
			if !ok || sim.Cleared() {
				continue
			}

			value := sim.Model().Observation(c.currentTime, sub.Port)
			evt := devsevent.ObservationEvent{Time: c.currentTime, Target: sub.Sim, Port: sub.Port, View: name}
			v.Process(evt, value)
		}
	}

	var firstErr error

	for _, name := range c.viewOrder {
		if err := c.views[name].Close(c.currentTime); err != nil && firstErr == nil {
			firstErr = simerr.NewIOError(name, err)
		}
	}

	return firstErr
}
