package dag

import (
	"fmt"

	"go.uber.org/multierr"
)

// Topology is the immutable, validated form of a Graph: every endpoint is
// known to exist and be wired correctly, and nodes are given in a
// topological order safe for schema propagation and instance construction.
type Topology struct {
	nodes   map[NodeHandleKey]*node
	order   []NodeHandleKey // topological order
	edges   []Edge
	inEdges map[NodeHandleKey][]Edge // edges terminating at this node, in connect order
	outEdges map[NodeHandleKey][]Edge // edges originating at this node, in connect order
}

// NodeHandles returns every node in topological order.
func (t *Topology) NodeHandles() []NodeHandle {
	out := make([]NodeHandle, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.nodes[k].Handle)
	}
	return out
}

// Kind returns the role of node.
func (t *Topology) Kind(node NodeHandle) Kind {
	return t.nodes[node.MapKey()].Kind
}

// Factory returns the type-erased factory stored for node; callers type
// assert it to the concrete operator.*Factory interface they need.
func (t *Topology) Factory(node NodeHandle) any {
	return t.nodes[node.MapKey()].Factory
}

// InEdges returns the edges terminating at node, in the order they were
// connected; each edge's To.Port names its destination port.
func (t *Topology) InEdges(node NodeHandle) []Edge {
	return t.inEdges[node.MapKey()]
}

// OutEdges returns the edges originating at node, in the order they were
// connected; each edge's From.Port names its source port.
func (t *Topology) OutEdges(node NodeHandle) []Edge {
	return t.outEdges[node.MapKey()]
}

// AllEdges returns every edge in the validated graph.
func (t *Topology) AllEdges() []Edge {
	return t.edges
}

// Validate checks the structural invariants of spec §3/§4.1 and returns
// an immutable Topology, or a combined error describing every problem
// found (via go.uber.org/multierr, so errors.Is/As still works against
// any individual wrapped error).
func (g *Graph) Validate() (*Topology, error) {
	var errs error

	inEdges := make(map[NodeHandleKey][]Edge)
	outEdges := make(map[NodeHandleKey][]Edge)
	for _, e := range g.edges {
		inEdges[e.To.Node.MapKey()] = append(inEdges[e.To.Node.MapKey()], e)
		outEdges[e.From.Node.MapKey()] = append(outEdges[e.From.Node.MapKey()], e)
	}

	for _, key := range g.order {
		n := g.nodes[key]
		switch n.Kind {
		case KindSource:
			if len(outEdges[key]) == 0 {
				errs = multierr.Append(errs, &MissingOutputEdgeError{Node: n.Handle})
			}
		case KindProcessor:
			f := n.Factory.(processorFactory)
			for _, p := range f.GetInputPorts() {
				if !hasEdgeToPort(inEdges[key], p) {
					errs = multierr.Append(errs, &MissingInputEdgeError{Input: Endpoint{Node: n.Handle, Port: p}})
				}
			}
		case KindSink:
			f := n.Factory.(sinkFactory)
			for _, p := range f.GetInputPorts() {
				if !hasEdgeToPort(inEdges[key], p) {
					errs = multierr.Append(errs, &MissingInputEdgeError{Input: Endpoint{Node: n.Handle, Port: p}})
				}
			}
		}
	}

	order, cycleErr := topoSort(g)
	if cycleErr != nil {
		errs = multierr.Append(errs, cycleErr)
	}

	if errs != nil {
		return nil, errs
	}

	return &Topology{
		nodes:    g.nodes,
		order:    order,
		edges:    g.edges,
		inEdges:  inEdges,
		outEdges: outEdges,
	}, nil
}

func hasEdgeToPort(edges []Edge, port PortHandle) bool {
	for _, e := range edges {
		if e.To.Port == port {
			return true
		}
	}
	return false
}

// topoSort performs a DFS-based cycle check and topological ordering,
// grounded on the same visited/in-recursion-stack shape used by
// vjranagit-argo-workflows's DependencyGraph.hasCycle/TopologicalSort,
// adapted from task-name dependency edges to Endpoint-based dataflow
// edges (here a "dependency" runs downstream→upstream: a node must be
// ordered after every node with an edge into it).
func topoSort(g *Graph) ([]NodeHandleKey, error) {
	adjacency := make(map[NodeHandleKey][]NodeHandleKey) // node -> nodes it has an edge into (downstream)
	for _, e := range g.edges {
		from := e.From.Node.MapKey()
		to := e.To.Node.MapKey()
		adjacency[from] = append(adjacency[from], to)
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[NodeHandleKey]int, len(g.order))
	var order []NodeHandleKey
	var stack []NodeHandle

	var visit func(key NodeHandleKey) error
	visit = func(key NodeHandleKey) error {
		color[key] = gray
		stack = append(stack, g.nodes[key].Handle)

		for _, next := range adjacency[key] {
			switch color[next] {
			case white:
				if err := visit(next); err != nil {
					return err
				}
			case gray:
				cycle := append([]NodeHandle{}, stack...)
				cycle = append(cycle, g.nodes[next].Handle)
				return &CycleIntroducedError{Cycle: cycle}
			}
		}

		stack = stack[:len(stack)-1]
		color[key] = black
		order = append(order, key)
		return nil
	}

	for _, key := range g.order {
		if color[key] == white {
			if err := visit(key); err != nil {
				return nil, err
			}
		}
	}

	// visit appends a node only after all its downstream neighbors are
	// done, so `order` comes out downstream-first; reverse for an
	// upstream-first (Source...Sink) topological order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	if len(order) != len(g.order) {
		return nil, fmt.Errorf("dag: internal error: topological sort produced %d nodes, graph has %d", len(order), len(g.order))
	}
	return order, nil
}
