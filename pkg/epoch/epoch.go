// Package epoch implements the Chandy-Lamport-style barrier alignment
// protocol of spec §4.5: a coordinator issues monotonic epoch markers to
// every source on a cadence, and downstream nodes commit once every input
// port has observed the same marker.
package epoch

import (
	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/record"
)

// Epoch identifies one commit checkpoint: a monotonic id plus the
// per-source checkpoint each source had reached when the epoch was cut.
type Epoch struct {
	ID      uint64
	Details map[dag.NodeHandleKey]record.TxID
}

// CheckpointFor returns the TxID the named source had reached as of this
// epoch, if that source has reported one yet.
func (e Epoch) CheckpointFor(node dag.NodeHandle) (record.TxID, bool) {
	tx, ok := e.Details[node.MapKey()]
	return tx, ok
}

func (e Epoch) clone() Epoch {
	details := make(map[dag.NodeHandleKey]record.TxID, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	return Epoch{ID: e.ID, Details: details}
}
