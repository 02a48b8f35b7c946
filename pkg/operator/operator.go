// Package operator defines the Source, Processor, and Sink contracts
// (and their factories) that the core drives but never implements itself;
// concrete connectors live outside this module per spec §1.
package operator

import (
	"context"

	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/record"
	"github.com/epochflow/dflow/pkg/schema"
	"github.com/epochflow/dflow/pkg/statestore"
)

// Runtime is the handle the executor gives a factory at Build time so a
// stateful operator can ask for the bounded state store SPEC_FULL.md §2.10
// describes. The core never reads or writes through the returned store.
type Runtime interface {
	// StateStore returns the bounded map backing port, or nil if port was
	// not declared Stateful/StatefulWithPrimaryKeyLookup.
	StateStore(port dag.PortHandle) statestore.Store
	// MaxMapSize is the advisory cap from ExecutorOptions.MaxMapSize.
	MaxMapSize() int
}

// SourceForwarder is the write side of a source's output channels,
// presented to a running Source.
type SourceForwarder interface {
	Send(msg record.IngestionMessage, port dag.PortHandle) error
}

// Source runs until exhaustion, error, or cancellation, emitting strictly
// increasing (txid, seq_in_tx) identifiers.
type Source interface {
	// CanStartFrom reports whether this source supports resuming from the
	// given checkpoint.
	CanStartFrom(checkpoint record.TxID) bool
	// Start runs the source. checkpoint is nil for a cold start.
	Start(ctx context.Context, forwarder SourceForwarder, checkpoint *record.TxID) error
}

// SourceFactory builds a Source once its output schemas are resolved.
type SourceFactory interface {
	ID() string
	TypeName() string
	GetOutputPorts() []dag.OutputPortDef
	GetOutputSchema(port dag.PortHandle) (schema.WithContext, error)
	Build(outputSchemas map[dag.PortHandle]schema.WithContext, rt Runtime) (Source, error)
}

// ProcessorForwarder is the write side of a processor's output channels.
// Send is infallible from the operator's point of view: backpressure is
// handled by the underlying channel, not surfaced as an error.
type ProcessorForwarder interface {
	Send(op record.Operation, port dag.PortHandle)
}

// Processor transforms one message at a time and flushes batched work at
// epoch boundaries.
type Processor interface {
	Process(fromPort dag.PortHandle, op record.Operation, forwarder ProcessorForwarder) error
	Commit(e *epoch.Epoch) error
}

// ProcessorFactory builds a Processor once its input and output schemas
// are resolved.
type ProcessorFactory interface {
	ID() string
	TypeName() string
	GetInputPorts() []dag.PortHandle
	GetOutputPorts() []dag.OutputPortDef
	GetOutputSchema(outputPort dag.PortHandle, inputSchemas map[dag.PortHandle]schema.WithContext) (schema.WithContext, error)
	Build(inputSchemas, outputSchemas map[dag.PortHandle]schema.WithContext, rt Runtime) (Processor, error)
}

// Sink durably or observably consumes messages and has no outputs.
type Sink interface {
	Process(fromPort dag.PortHandle, op record.Operation) error
	Commit(e *epoch.Epoch) error
	OnSourceSnapshottingDone(connectionName string) error
}

// SinkFactory builds a Sink once its input schemas are resolved. Prepare
// is called during schema propagation for side-effectful validation
// (spec §4.2) independent of Build.
type SinkFactory interface {
	ID() string
	TypeName() string
	GetInputPorts() []dag.PortHandle
	Prepare(inputSchemas map[dag.PortHandle]schema.WithContext) error
	Build(inputSchemas map[dag.PortHandle]schema.WithContext, rt Runtime) (Sink, error)
}
