package config

import (
	"fmt"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/coordinator"
	"github.com/sarchlab/devscore/devstime"
	"github.com/sarchlab/devscore/factory"
	"github.com/sarchlab/devscore/graph"
	"github.com/sarchlab/devscore/view"
)

// Apply assembles a parsed Project onto co: registers Conditions and
// Observables, builds the structural graph (every model after its
// parent, then connections), and builds every Output/View
// pair. It must run before co.Init, mirroring VLE's
// Coordinator::addModels/buildViews running before the first run().
func Apply(proj *Project, co *coordinator.Coordinator) error {
	for _, cd := range proj.Conditions {
		values, err := convertValues(cd.Values)
		if err != nil {
			return fmt.Errorf("condition %q: %w", cd.Name, err)
		}

		if err := co.AddCondition(factory.Condition{Name: cd.Name, Values: values}); err != nil {
			return err
		}
	}

	for _, od := range proj.Observables {
		if err := co.AddObservable(factory.Observable{Name: od.Name, Ports: od.Ports}); err != nil {
			return err
		}
	}

	if err := buildGraph(proj.Graph, co); err != nil {
		return err
	}

	return buildViews(proj, co)
}

// convertValues turns the raw YAML scalar map of a ConditionDescriptor
// into atomicmodel.Value, keeping the config package itself free of any
// dependency beyond this translation boundary.
func convertValues(raw map[string]interface{}) (atomicmodel.InitEvents, error) {
	out := make(atomicmodel.InitEvents, len(raw))

	for k, v := range raw {
		switch t := v.(type) {
		case bool:
			out[k] = atomicmodel.BoolValue(t)
		case int:
			out[k] = atomicmodel.IntValue(int64(t))
		case int64:
			out[k] = atomicmodel.IntValue(t)
		case float64:
			out[k] = atomicmodel.DoubleValue(t)
		case string:
			out[k] = atomicmodel.StringValue(t)
		default:
			return nil, fmt.Errorf("value %q has unsupported type %T", k, v)
		}
	}

	return out, nil
}

// buildGraph instantiates every coupled and atomic model named in gd,
// in as many passes as needed for a child to always follow its parent,
// then wires every connection.
func buildGraph(gd GraphDescriptor, co *coordinator.Coordinator) error {
	nodes := map[string]graph.Node{"": co.Graph().Root}

	pending := append([]ModelDescriptor(nil), gd.Models...)

	for len(pending) > 0 {
		progressed := false
		next := pending[:0]

		for _, m := range pending {
			parentNode, ok := nodes[m.Parent]
			if !ok {
				next = append(next, m)
				continue
			}

			parent, ok := parentNode.(*graph.CoupledNode)
			if !ok {
				return fmt.Errorf("model %q: parent %q is not a coupled model", m.Name, m.Parent)
			}

			node, err := instantiate(m, parent, co)
			if err != nil {
				return err
			}

			nodes[m.Name] = node
			progressed = true
		}

		if !progressed {
			return fmt.Errorf("graph descriptor has unresolvable parent references among %d model(s)", len(next))
		}

		pending = next
	}

	for _, cd := range gd.Connections {
		parentNode, ok := nodes[cd.Parent]
		if !ok {
			return fmt.Errorf("connection parent %q not found", cd.Parent)
		}

		parent, ok := parentNode.(*graph.CoupledNode)
		if !ok {
			return fmt.Errorf("connection parent %q is not a coupled model", cd.Parent)
		}

		src, ok := nodes[cd.SrcModel]
		if !ok {
			return fmt.Errorf("connection source %q not found", cd.SrcModel)
		}

		dst, ok := nodes[cd.DstModel]
		if !ok {
			return fmt.Errorf("connection destination %q not found", cd.DstModel)
		}

		if err := co.Graph().Connect(parent, src, cd.SrcPort, dst, cd.DstPort); err != nil {
			return err
		}
	}

	return nil
}

func instantiate(m ModelDescriptor, parent *graph.CoupledNode, co *coordinator.Coordinator) (graph.Node, error) {
	switch m.Kind {
	case "coupled":
		return co.Graph().AddCoupled(parent, m.Name)
	case "atomic":
		if _, err := co.RegisterModel(parent, m.Name, m.Dynamics, m.Conditions, m.Observable); err != nil {
			return nil, err
		}

		node, _ := parent.FindChild(m.Name)

		return node, nil
	default:
		return nil, fmt.Errorf("model %q: unknown kind %q", m.Name, m.Kind)
	}
}

func buildViews(proj *Project, co *coordinator.Coordinator) error {
	writers := make(map[string]view.StreamWriter, len(proj.Outputs))

	for _, od := range proj.Outputs {
		w, err := newStreamWriter(od)
		if err != nil {
			return fmt.Errorf("output %q: %w", od.Name, err)
		}

		file := proj.Name + "_" + od.Name

		if err := w.Open(od.Plugin, od.Location, file, od.Data, 0); err != nil {
			return fmt.Errorf("opening output %q: %w", od.Name, err)
		}

		writers[od.Name] = w
	}

	for _, vd := range proj.Views {
		w, ok := writers[vd.Output]
		if !ok {
			return fmt.Errorf("view %q: output %q not found", vd.Name, vd.Output)
		}

		v, err := newView(vd, w)
		if err != nil {
			return err
		}

		if err := co.AddView(v); err != nil {
			return err
		}
	}

	return nil
}

func newStreamWriter(od OutputDescriptor) (view.StreamWriter, error) {
	switch od.Format {
	case "local", "":
		return view.NewSQLiteStreamWriter(), nil
	case "distant":
		return view.NewHTTPStreamWriter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", od.Format)
	}
}

func newView(vd ViewDescriptor, w view.StreamWriter) (view.View, error) {
	switch vd.Kind {
	case "timed":
		return view.NewTimedView(vd.Name, w, devstime.Duration(vd.Period)), nil
	case "event":
		return view.NewEventView(vd.Name, w), nil
	case "finish":
		return view.NewFinishView(vd.Name, w), nil
	default:
		return nil, fmt.Errorf("unknown view kind %q", vd.Kind)
	}
}
