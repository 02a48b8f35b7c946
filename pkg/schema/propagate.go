package schema

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/epochflow/dflow/pkg/dag"
)

// sourceFactory is the subset of operator.SourceFactory propagation
// needs. Defined locally, mirroring pkg/dag's own narrow interfaces, so
// this package never imports operator (which imports this package, so
// importing it here would close a cycle).
type sourceFactory interface {
	GetOutputPorts() []dag.OutputPortDef
	GetOutputSchema(port dag.PortHandle) (WithContext, error)
}

// processorFactory mirrors operator.ProcessorFactory's schema-time shape.
type processorFactory interface {
	GetInputPorts() []dag.PortHandle
	GetOutputPorts() []dag.OutputPortDef
	GetOutputSchema(outputPort dag.PortHandle, inputSchemas map[dag.PortHandle]WithContext) (WithContext, error)
}

// sinkFactory mirrors operator.SinkFactory's schema-time shape.
type sinkFactory interface {
	GetInputPorts() []dag.PortHandle
	Prepare(inputSchemas map[dag.PortHandle]WithContext) error
}

// topology is the subset of *dag.Topology propagation needs, named
// locally so a caller can pass a *dag.Topology directly (it satisfies
// this structurally) without this package importing anything beyond
// the dag types already in its signatures.
type topology interface {
	NodeHandles() []dag.NodeHandle
	Kind(node dag.NodeHandle) dag.Kind
	Factory(node dag.NodeHandle) any
	InEdges(node dag.NodeHandle) []dag.Edge
}

// Propagated holds the resolved output schema of every output port in
// the graph, keyed by node and port. Schemas are frozen once Propagate
// returns: nothing in this package or downstream mutates an entry in
// place, matching the "frozen after propagation" invariant operators
// are built against.
type Propagated struct {
	outputs map[dag.NodeHandleKey]map[dag.PortHandle]WithContext
}

// OutputOf returns the resolved schema for node's output port, if
// node declares one there.
func (p *Propagated) OutputOf(node dag.NodeHandle, port dag.PortHandle) (WithContext, bool) {
	ports, ok := p.outputs[node.MapKey()]
	if !ok {
		return WithContext{}, false
	}
	ws, ok := ports[port]
	return ws, ok
}

// Propagate walks the topology in its given (upstream-first) order,
// asking each source for its declared output schemas, each processor to
// derive its output schemas from its resolved input schemas, and each
// sink to Prepare against its resolved input schemas. It stops at the
// first error a factory call returns and reports that error, annotated
// with the node (and output port, where there is one).
func Propagate(t topology) (*Propagated, error) {
	p := &Propagated{outputs: make(map[dag.NodeHandleKey]map[dag.PortHandle]WithContext)}

	for _, node := range t.NodeHandles() {
		switch t.Kind(node) {
		case dag.KindSource:
			f, ok := t.Factory(node).(sourceFactory)
			if !ok {
				return nil, fmt.Errorf("schema: node %s: factory does not implement source schema methods", node)
			}
			out := make(map[dag.PortHandle]WithContext, len(f.GetOutputPorts()))
			for _, def := range f.GetOutputPorts() {
				ws, err := f.GetOutputSchema(def.Handle)
				if err != nil {
					return nil, errors.WithMessagef(err, "schema: node %s: output port %d", node, def.Handle)
				}
				out[def.Handle] = ws
			}
			p.outputs[node.MapKey()] = out

		case dag.KindProcessor:
			f, ok := t.Factory(node).(processorFactory)
			if !ok {
				return nil, fmt.Errorf("schema: node %s: factory does not implement processor schema methods", node)
			}
			inputSchemas, err := p.collectInputs(t, node)
			if err != nil {
				return nil, err
			}
			out := make(map[dag.PortHandle]WithContext, len(f.GetOutputPorts()))
			for _, def := range f.GetOutputPorts() {
				ws, err := f.GetOutputSchema(def.Handle, inputSchemas)
				if err != nil {
					return nil, errors.WithMessagef(err, "schema: node %s: output port %d", node, def.Handle)
				}
				out[def.Handle] = ws
			}
			p.outputs[node.MapKey()] = out

		case dag.KindSink:
			f, ok := t.Factory(node).(sinkFactory)
			if !ok {
				return nil, fmt.Errorf("schema: node %s: factory does not implement sink schema methods", node)
			}
			inputSchemas, err := p.collectInputs(t, node)
			if err != nil {
				return nil, err
			}
			if err := f.Prepare(inputSchemas); err != nil {
				return nil, errors.WithMessagef(err, "schema: node %s: prepare", node)
			}
		}
	}

	return p, nil
}

func (p *Propagated) collectInputs(t topology, node dag.NodeHandle) (map[dag.PortHandle]WithContext, error) {
	inputs := make(map[dag.PortHandle]WithContext)
	for _, e := range t.InEdges(node) {
		ws, ok := p.OutputOf(e.From.Node, e.From.Port)
		if !ok {
			return nil, fmt.Errorf("schema: node %s: no resolved schema for upstream %s", node, e.From)
		}
		inputs[e.To.Port] = ws
	}
	return inputs, nil
}
