// Package factory implements the ModelFactory: the registries of
// reusable Dynamics, Condition and Observable templates VLE calls
// "permanent" (addPermanent(Dynamic)/addPermanent(Condition)/
// addPermanent(Observable)), the classname-keyed sub-graph templates
// ModelFactory::createModelFromClass clones, and the construction path
// that turns resolved conditions into an atomicmodel.InitEvents before
// calling Init. Grounded on sim/serialization/typeregistry.go's
// reflect-based type registry for the by-name construction pattern,
// generalized from Go's builtin types to this repo's Dynamics
// constructors.
package factory

import (
	"fmt"
	"sync"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/idgen"
)

// DynamicsCtor builds a fresh atomicmodel.Model instance for one
// simulator, given the resolved InitEvents for its node.
type DynamicsCtor func(init atomicmodel.InitEvents) atomicmodel.Model

// Condition is a named, reusable bundle of InitEvents values — VLE's
// vpz::Condition — referenced by name from many atomic models rather
// than duplicated per model.
type Condition struct {
	Name   string
	Values atomicmodel.InitEvents
}

// Observable names the ports of an atomic model that are legal
// Observation targets — VLE's vpz::Observable. CreateModel only checks
// that a named Observable is registered; Coordinator.Subscribe does not
// check view subscriptions against its ports.
type Observable struct {
	Name  string
	Ports []string
}

// ClassTemplate is a named sub-graph blueprint that
// createModelFromClass clones: every atomic node in the template is
// instantiated fresh, keeping the template's Dynamics/Condition/
// Observable bindings. Build returns the freshly built atomic models
// (so the caller can register and initialize their Simulators the same
// way CreateModel does) plus the root node of the clone.
type ClassTemplate struct {
	Name  string
	Build func(f *ModelFactory, ids idgen.Generator, g *graph.Graph, parent *graph.CoupledNode, name string) ([]*Built, graph.Node, error)
}

// ClassModelDescriptor names one node of a class template's internal
// sub-graph, relative to the template's own root: Parent == "" means a
// direct child of the cloned instance's root node.
type ClassModelDescriptor struct {
	Name       string
	Parent     string
	Kind       string // "atomic" or "coupled"
	Dynamics   string
	Conditions []string
	Observable string
}

// ClassConnectionDescriptor names one connection between two models of
// a class template's internal sub-graph, scoped to their shared parent
// (relative to the template's root, "" meaning the root itself).
type ClassConnectionDescriptor struct {
	Parent   string
	SrcModel string
	SrcPort  string
	DstModel string
	DstPort  string
}

// NewClassTemplate builds a ClassTemplate whose Build clones models and
// connections into a fresh coupled node on every call, mirroring VLE's
// ModelFactory::createModelFromClass: the clone's root is a new coupled
// node named for the instance, every descriptor is instantiated fresh
// under it in as many passes as needed for a child to always follow its
// parent (atomic descriptors going through CreateModel so each gets its
// own Simulator), and every connection is wired the same way
// config.Apply wires a project's top-level graph.
func NewClassTemplate(name string, models []ClassModelDescriptor, connections []ClassConnectionDescriptor) ClassTemplate {
	return ClassTemplate{
		Name: name,
		Build: func(
			f *ModelFactory,
			ids idgen.Generator,
			g *graph.Graph,
			parent *graph.CoupledNode,
			instanceName string,
		) ([]*Built, graph.Node, error) {
			root, err := g.AddCoupled(parent, instanceName)
			if err != nil {
				return nil, nil, err
			}

			nodes := map[string]graph.Node{"": root}

			var built []*Built

			pending := append([]ClassModelDescriptor(nil), models...)

			for len(pending) > 0 {
				progressed := false
				next := pending[:0]

				for _, m := range pending {
					parentNode, ok := nodes[m.Parent]
					if !ok {
						next = append(next, m)
						continue
					}

					parentCoupled, ok := parentNode.(*graph.CoupledNode)
					if !ok {
						return nil, nil, fmt.Errorf("class %q: model %q's parent %q is not a coupled model", name, m.Name, m.Parent)
					}

					node, b, err := instantiateClassModel(f, ids, g, parentCoupled, m)
					if err != nil {
						return nil, nil, err
					}

					nodes[m.Name] = node
					if b != nil {
						built = append(built, b)
					}

					progressed = true
				}

				if !progressed {
					return nil, nil, fmt.Errorf("class %q: unresolvable parent references among %d model(s)", name, len(next))
				}

				pending = next
			}

			for _, cd := range connections {
				parentNode, ok := nodes[cd.Parent]
				if !ok {
					return nil, nil, fmt.Errorf("class %q: connection parent %q not found", name, cd.Parent)
				}

				parentCoupled, ok := parentNode.(*graph.CoupledNode)
				if !ok {
					return nil, nil, fmt.Errorf("class %q: connection parent %q is not a coupled model", name, cd.Parent)
				}

				src, ok := nodes[cd.SrcModel]
				if !ok {
					return nil, nil, fmt.Errorf("class %q: connection source %q not found", name, cd.SrcModel)
				}

				dst, ok := nodes[cd.DstModel]
				if !ok {
					return nil, nil, fmt.Errorf("class %q: connection destination %q not found", name, cd.DstModel)
				}

				if err := g.Connect(parentCoupled, src, cd.SrcPort, dst, cd.DstPort); err != nil {
					return nil, nil, err
				}
			}

			return built, root, nil
		},
	}
}

func instantiateClassModel(
	f *ModelFactory,
	ids idgen.Generator,
	g *graph.Graph,
	parent *graph.CoupledNode,
	m ClassModelDescriptor,
) (graph.Node, *Built, error) {
	switch m.Kind {
	case "coupled":
		node, err := g.AddCoupled(parent, m.Name)
		return node, nil, err
	case "atomic":
		b, err := f.CreateModel(ids, g, parent, m.Name, m.Dynamics, m.Conditions, m.Observable)
		if err != nil {
			return nil, nil, err
		}

		return b.Node, b, nil
	default:
		return nil, nil, fmt.Errorf("model %q: unknown kind %q", m.Name, m.Kind)
	}
}

// ModelFactory holds the three permanent registries (Dynamics,
// Condition, Observable) plus the classname registry, and builds
// concrete atomicmodel.Model instances on demand.
type ModelFactory struct {
	mu sync.RWMutex

	dynamics    map[string]DynamicsCtor
	conditions  map[string]Condition
	observables map[string]Observable
	classes     map[string]ClassTemplate
}

// New creates an empty ModelFactory.
func New() *ModelFactory {
	return &ModelFactory{
		dynamics:    make(map[string]DynamicsCtor),
		conditions:  make(map[string]Condition),
		observables: make(map[string]Observable),
		classes:     make(map[string]ClassTemplate),
	}
}

// AddDynamics registers a Dynamics constructor under name, per VLE's
// addPermanent(Dynamic). Returns an error if name is already taken.
func (f *ModelFactory) AddDynamics(name string, ctor DynamicsCtor) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.dynamics[name]; ok {
		return fmt.Errorf("dynamics %q already registered", name)
	}

	f.dynamics[name] = ctor

	return nil
}

// AddCondition registers a reusable Condition, per VLE's
// addPermanent(Condition).
func (f *ModelFactory) AddCondition(c Condition) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.conditions[c.Name]; ok {
		return fmt.Errorf("condition %q already registered", c.Name)
	}

	f.conditions[c.Name] = c

	return nil
}

// AddObservable registers a reusable Observable, per VLE's
// addPermanent(Observable).
func (f *ModelFactory) AddObservable(o Observable) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.observables[o.Name]; ok {
		return fmt.Errorf("observable %q already registered", o.Name)
	}

	f.observables[o.Name] = o

	return nil
}

// RegisterClass registers a named sub-graph template that
// CreateModelFromClass clones, per VLE's ModelFactory::
// createModelFromClass.
func (f *ModelFactory) RegisterClass(tpl ClassTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.classes[tpl.Name]; ok {
		return fmt.Errorf("class %q already registered", tpl.Name)
	}

	f.classes[tpl.Name] = tpl

	return nil
}

// ResolveInitEvents merges the named conditions into one
// atomicmodel.InitEvents map, later conditions' values overwriting
// earlier ones with the same key, mirroring VLE's handling of a
// model's multiple bound conditions.
func (f *ModelFactory) ResolveInitEvents(conditionNames []string) (atomicmodel.InitEvents, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	init := make(atomicmodel.InitEvents)

	for _, name := range conditionNames {
		cond, ok := f.conditions[name]
		if !ok {
			return nil, fmt.Errorf("condition %q not registered", name)
		}

		for k, v := range cond.Values {
			init[k] = v
		}
	}

	return init, nil
}

// ObservablePorts returns the legal observation ports for a named
// Observable. Coordinator.Subscribe does not call it; subscriptions are
// not checked against these ports.
func (f *ModelFactory) ObservablePorts(name string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	obs, ok := f.observables[name]
	if !ok {
		return nil, fmt.Errorf("observable %q not registered", name)
	}

	return obs.Ports, nil
}

// dynamicsCtor looks up a registered Dynamics constructor by name.
func (f *ModelFactory) dynamicsCtor(name string) (DynamicsCtor, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ctor, ok := f.dynamics[name]
	if !ok {
		return nil, fmt.Errorf("dynamics %q not registered", name)
	}

	return ctor, nil
}

// classTemplate looks up a registered class template by name.
func (f *ModelFactory) classTemplate(name string) (ClassTemplate, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	tpl, ok := f.classes[name]
	if !ok {
		return ClassTemplate{}, fmt.Errorf("class %q not registered", name)
	}

	return tpl, nil
}
