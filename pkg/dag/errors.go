package dag

import "fmt"

// UnknownNodeError reports a reference to a NodeHandle never added to the
// graph.
type UnknownNodeError struct {
	Node NodeHandle
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("dag: unknown node %s", e.Node)
}

// UnknownPortError reports a reference to a port a node never declared.
type UnknownPortError struct {
	Node NodeHandle
	Port PortHandle
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("dag: node %s has no port %d", e.Node, e.Port)
}

// PortKindMismatchError reports a connect() call whose source or
// destination endpoint is the wrong kind (e.g. sink->anything, or
// anything->source).
type PortKindMismatchError struct {
	Endpoint Endpoint
	Reason   string
}

func (e *PortKindMismatchError) Error() string {
	return fmt.Sprintf("dag: port kind mismatch at %s: %s", e.Endpoint, e.Reason)
}

// DuplicateInputEdgeError reports a second edge terminating at an input
// port that already has one.
type DuplicateInputEdgeError struct {
	Input Endpoint
}

func (e *DuplicateInputEdgeError) Error() string {
	return fmt.Sprintf("dag: input port %s already has an incoming edge", e.Input)
}

// CycleIntroducedError reports that Validate() found the graph contains
// a cycle. Connect does not check for cycles, so an edge that closes one
// is accepted until Validate runs.
type CycleIntroducedError struct {
	Cycle []NodeHandle
}

func (e *CycleIntroducedError) Error() string {
	return fmt.Sprintf("dag: cycle introduced: %v", e.Cycle)
}

// MissingInputEdgeError reports a processor/sink input port with no
// incoming edge at validation time.
type MissingInputEdgeError struct {
	Input Endpoint
}

func (e *MissingInputEdgeError) Error() string {
	return fmt.Sprintf("dag: input port %s has no incoming edge", e.Input)
}

// MissingOutputEdgeError reports a source with zero outgoing edges.
type MissingOutputEdgeError struct {
	Node NodeHandle
}

func (e *MissingOutputEdgeError) Error() string {
	return fmt.Sprintf("dag: source %s has no outgoing edges", e.Node)
}

// DuplicateNodeError reports a second AddSource/AddProcessor/AddSink call
// using a handle already present in the graph.
type DuplicateNodeError struct {
	Node NodeHandle
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("dag: node %s already exists", e.Node)
}
