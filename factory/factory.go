package factory

import (
	"fmt"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/idgen"
	"github.com/sarchlab/devscore/simulator"
)

// Built is the result of building one atomic model: its graph node,
// its Simulator wrapper, and the InitEvents it was constructed with.
type Built struct {
	Node      *graph.AtomicNode
	Simulator *simulator.Simulator
	Init      atomicmodel.InitEvents
}

// CreateModel builds one atomic model under parent, mirroring VLE's
// ModelFactory::createModel: resolve the named conditions into
// InitEvents, construct the Dynamics instance, wrap it in a Simulator,
// and attach it to the graph.
func (f *ModelFactory) CreateModel(
	ids idgen.Generator,
	g *graph.Graph,
	parent *graph.CoupledNode,
	name string,
	dynamicsName string,
	conditionNames []string,
	observableName string,
) (*Built, error) {
	ctor, err := f.dynamicsCtor(dynamicsName)
	if err != nil {
		return nil, err
	}

	if observableName != "" {
		if _, err := f.ObservablePorts(observableName); err != nil {
			return nil, err
		}
	}

	init, err := f.ResolveInitEvents(conditionNames)
	if err != nil {
		return nil, err
	}

	node, err := g.AddAtomic(parent, name)
	if err != nil {
		return nil, err
	}

	model := ctor(init)

	id := devsevent.SimulatorID(ids.Generate())
	sim := simulator.New(id, node, model)

	return &Built{Node: node, Simulator: sim, Init: init}, nil
}

// CreateModelFromClass clones a registered sub-graph template under
// parent, mirroring VLE's ModelFactory::createModelFromClass, and
// returns every atomic model the clone built plus the fresh root node
// of the clone. The caller (Coordinator) is responsible for
// registering and initializing the returned Simulators, the same way
// it does for a single CreateModel call.
func (f *ModelFactory) CreateModelFromClass(
	ids idgen.Generator,
	g *graph.Graph,
	parent *graph.CoupledNode,
	className string,
	name string,
) ([]*Built, graph.Node, error) {
	tpl, err := f.classTemplate(className)
	if err != nil {
		return nil, nil, err
	}

	built, root, err := tpl.Build(f, ids, g, parent, name)
	if err != nil {
		return nil, nil, fmt.Errorf("instantiating class %q as %q: %w", className, name, err)
	}

	return built, root, nil
}
