// Package graph is the narrow, in-memory model-graph interface the
// Coordinator consumes for connection routing and dynamic structural
// mutation. The Coordinator only ever needs to resolve "what is
// connected to this port" and "which atomic descendants does this
// coupled node have", which is what Graph provides.
//
// Grounded on sim/model's PortOwner/Connection split and on VLE's
// src/vle/graph (Model/AtomicModel/CoupledModel), generalized into a
// single ownership type instead of a class hierarchy.
package graph

import "fmt"

// Node is either an AtomicNode or a CoupledNode.
type Node interface {
	Name() string
	Parent() *CoupledNode
	IsAtomic() bool
}

// ConnKind distinguishes an ordinary coupling from a request coupling,
// so route() in package coordinator knows whether crossing it produces
// a devsevent.ExternalEvent or a devsevent.RequestEvent.
type ConnKind int

// The two connection kinds.
const (
	ConnExternal ConnKind = iota
	ConnRequest
)

// Port is a (node, port-name) pair — the structural counterpart of
// devsevent.Port, which identifies a Simulator rather than a Node.
type Port struct {
	Node Node
	Name string
	Kind ConnKind
}

// AtomicNode is a leaf of the model graph: one simulated atomic model.
type AtomicNode struct {
	name   string
	parent *CoupledNode
}

// Name returns the atomic node's name, unique within its parent.
func (n *AtomicNode) Name() string { return n.name }

// Parent returns the coupled node containing this atomic node.
func (n *AtomicNode) Parent() *CoupledNode { return n.parent }

// IsAtomic always returns true for AtomicNode.
func (n *AtomicNode) IsAtomic() bool { return true }

// CoupledNode is a container of atomic or coupled sub-models with
// connections between ports. It carries no simulation state of its own.
type CoupledNode struct {
	name     string
	parent   *CoupledNode
	children map[string]Node
	order    []string

	// connections hold every connection whose source is a direct child
	// of this coupled node, keyed by that child and its output port.
	connections map[connKey][]Port
}

type connKey struct {
	node Node
	port string
}

// Name returns the coupled node's name.
func (n *CoupledNode) Name() string { return n.name }

// Parent returns the coupled node's parent, or nil at the graph root.
func (n *CoupledNode) Parent() *CoupledNode { return n.parent }

// IsAtomic always returns false for CoupledNode.
func (n *CoupledNode) IsAtomic() bool { return false }

// Children returns the direct children of n in creation order.
func (n *CoupledNode) Children() []Node {
	out := make([]Node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}

	return out
}

// FindChild looks up a direct child by name.
func (n *CoupledNode) FindChild(name string) (Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// Graph owns the structural model tree rooted at Root and the connection
// tables of every coupled node in it.
type Graph struct {
	Root *CoupledNode
}

// New creates a Graph whose root is an empty coupled node named "top",
// mirroring VLE's implicit top-level coupled model.
func New() *Graph {
	return &Graph{
		Root: newCoupled("top", nil),
	}
}

func newCoupled(name string, parent *CoupledNode) *CoupledNode {
	return &CoupledNode{
		name:        name,
		parent:      parent,
		children:    make(map[string]Node),
		connections: make(map[connKey][]Port),
	}
}

// AddAtomic creates a new atomic node named name under parent.
func (g *Graph) AddAtomic(parent *CoupledNode, name string) (*AtomicNode, error) {
	if _, exists := parent.children[name]; exists {
		return nil, fmt.Errorf("graph: duplicate model name %q under %q", name, parent.name)
	}

	n := &AtomicNode{name: name, parent: parent}
	parent.children[name] = n
	parent.order = append(parent.order, name)

	return n, nil
}

// AddCoupled creates a new coupled node named name under parent.
func (g *Graph) AddCoupled(parent *CoupledNode, name string) (*CoupledNode, error) {
	if _, exists := parent.children[name]; exists {
		return nil, fmt.Errorf("graph: duplicate model name %q under %q", name, parent.name)
	}

	n := newCoupled(name, parent)
	parent.children[name] = n
	parent.order = append(parent.order, name)

	return n, nil
}

// Connect adds an ordinary connection from (srcNode, srcPort) to
// (dstNode, dstPort). Both nodes must be direct children of the same
// coupled parent — DEVS connections are scoped to one coupled model's
// own coupling, per the formalism.
func (g *Graph) Connect(parent *CoupledNode, srcNode Node, srcPort string, dstNode Node, dstPort string) error {
	return g.connect(parent, srcNode, srcPort, dstNode, dstPort, ConnExternal)
}

// ConnectRequest is like Connect, but every event routed across it is
// delivered as a devsevent.RequestEvent instead of a
// devsevent.ExternalEvent — the wiring for a model that issues
// synchronous queries to another and expects an answer within the same
// instant.
func (g *Graph) ConnectRequest(parent *CoupledNode, srcNode Node, srcPort string, dstNode Node, dstPort string) error {
	return g.connect(parent, srcNode, srcPort, dstNode, dstPort, ConnRequest)
}

func (g *Graph) connect(parent *CoupledNode, srcNode Node, srcPort string, dstNode Node, dstPort string, kind ConnKind) error {
	if srcNode.Parent() != parent || dstNode.Parent() != parent {
		return fmt.Errorf("graph: connection endpoints must both be children of %q", parent.name)
	}

	key := connKey{node: srcNode, port: srcPort}
	parent.connections[key] = append(parent.connections[key], Port{Node: dstNode, Name: dstPort, Kind: kind})

	return nil
}

// TargetsOf returns every destination (node, port) reachable from
// (srcNode, srcPort) through srcNode's parent's connection table.
func (g *Graph) TargetsOf(srcNode Node, srcPort string) []Port {
	parent := srcNode.Parent()
	if parent == nil {
		return nil
	}

	return parent.connections[connKey{node: srcNode, port: srcPort}]
}

// DeleteAtomic removes n from its parent and deletes every connection
// mentioning it. It is the structural half of the two-phase deletion —
// the Coordinator is responsible for the Simulator and EventTable half.
func (g *Graph) DeleteAtomic(n *AtomicNode) {
	deleteNode(n)
}

// DeleteCoupled recursively deletes every atomic descendant of n first,
// then removes connections touching n's boundary, then removes n from
// its parent.
func (g *Graph) DeleteCoupled(n *CoupledNode) []*AtomicNode {
	var removed []*AtomicNode

	for _, child := range n.Children() {
		switch c := child.(type) {
		case *AtomicNode:
			removed = append(removed, c)
			deleteNode(c)
		case *CoupledNode:
			removed = append(removed, g.DeleteCoupled(c)...)
		}
	}

	deleteNode(n)

	return removed
}

// deleteNode detaches n from its parent: removes it from the child
// table and ordering, drops every connection keyed on n as a source,
// and strips n out of every other connection's destination list.
func deleteNode(n Node) {
	parent := n.Parent()
	if parent == nil {
		return
	}

	delete(parent.children, n.Name())

	for i, name := range parent.order {
		if name == n.Name() {
			parent.order = append(parent.order[:i], parent.order[i+1:]...)
			break
		}
	}

	for key := range parent.connections {
		if key.node == n {
			delete(parent.connections, key)
		}
	}

	for key, targets := range parent.connections {
		kept := targets[:0]

		for _, t := range targets {
			if t.Node != n {
				kept = append(kept, t)
			}
		}

		if len(kept) == 0 {
			delete(parent.connections, key)
		} else {
			parent.connections[key] = kept
		}
	}
}
