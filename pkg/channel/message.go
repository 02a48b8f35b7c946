// Package channel implements the edge queue fabric of spec §4.3: bounded,
// ordered, per-edge queues between operator ports, with deterministic
// fan-out for multi-consumer output ports.
package channel

import (
	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/record"
)

// Kind tags the variant carried by a Message.
type Kind int

const (
	// Op carries ordinary dataflow: an Insert/Delete/Update operation.
	Op Kind = iota
	// EpochMarker carries a commit barrier.
	EpochMarker
	// SnapshottingDone carries a source's initial-backfill-complete
	// notification through to sinks. Spec §3's IngestionMessage defines
	// this as a third source-emitted variant alongside OperationEvent and
	// (implicitly) the epoch marker; routing it through the same edge
	// queues as Op keeps its delivery ordered with the operations it
	// follows, the same guarantee spec §4.3 gives Op and EpochMarker.
	SnapshottingDone
	// Terminate is the poison pill signaling orderly shutdown.
	Terminate
)

// Message is the envelope carried on every edge.
type Message struct {
	Kind           Kind
	FromPort       dag.PortHandle
	Op             record.Operation // valid when Kind == Op
	Epoch          epoch.Epoch      // valid when Kind == EpochMarker
	ConnectionName string           // valid when Kind == SnapshottingDone
}
