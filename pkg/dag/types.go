// Package dag implements the mutable graph builder and the validated,
// immutable topology it produces: node handles, ports, endpoints, and the
// Source/Processor/Sink factory wiring described in spec §4.1.
package dag

import "fmt"

// PortHandle selects one input or output of a node.
type PortHandle uint16

// DefaultPort is the conventional single port of a single-port operator.
const DefaultPort PortHandle = 0

// NodeHandle identifies one node in the graph. Namespace is optional and
// defaults to nil for graphs with a single flat namespace.
type NodeHandle struct {
	Namespace *int
	ID        string
}

// NewNodeHandle builds a namespace-less handle, the common case.
func NewNodeHandle(id string) NodeHandle { return NodeHandle{ID: id} }

// NewNamespacedNodeHandle builds a handle scoped to a namespace.
func NewNamespacedNodeHandle(namespace int, id string) NodeHandle {
	return NodeHandle{Namespace: &namespace, ID: id}
}

// key is the comparable form used for map lookups, since NodeHandle holds
// a pointer field and is not itself usable as a map key.
func (h NodeHandle) key() (int, bool, string) {
	if h.Namespace == nil {
		return 0, false, h.ID
	}
	return *h.Namespace, true, h.ID
}

// Equal reports whether two handles refer to the same node.
func (h NodeHandle) Equal(other NodeHandle) bool {
	return h.key() == other.key()
}

func (h NodeHandle) String() string {
	if h.Namespace == nil {
		return h.ID
	}
	return fmt.Sprintf("%d:%s", *h.Namespace, h.ID)
}

// MapKey returns a value suitable for use as a map key for this handle.
func (h NodeHandle) MapKey() NodeHandleKey {
	ns, has, id := h.key()
	return NodeHandleKey{namespace: ns, hasNamespace: has, id: id}
}

// NodeHandleKey is the comparable, map-key-safe projection of a NodeHandle.
type NodeHandleKey struct {
	namespace    int
	hasNamespace bool
	id           string
}

// Endpoint identifies one side (node + port) of one edge.
type Endpoint struct {
	Node NodeHandle
	Port PortHandle
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s[%d]", e.Node, e.Port)
}

// OutputPortType controls whether the channel fabric / runtime must
// retain history on this port for downstream lookup operators.
type OutputPortType int

const (
	Stateless OutputPortType = iota
	StatefulWithPrimaryKeyLookup
	Stateful
)

func (t OutputPortType) String() string {
	switch t {
	case Stateless:
		return "Stateless"
	case StatefulWithPrimaryKeyLookup:
		return "StatefulWithPrimaryKeyLookup"
	case Stateful:
		return "Stateful"
	default:
		return "Unknown"
	}
}

// OutputPortDef declares one output port of a node.
type OutputPortDef struct {
	Handle PortHandle
	Type   OutputPortType
}
