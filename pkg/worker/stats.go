package worker

import (
	"sync"

	"github.com/epochflow/dflow/pkg/dag"
)

// Stats collects the counters SPEC_FULL.md's observability plumbing
// calls for: messages processed and the last epoch committed, per node.
// It has no metrics-exporter wiring of its own (out of scope); it is
// read back through plain accessors, the way the teacher's internal
// status payloads are built up incrementally and read on demand.
type Stats struct {
	mu        sync.Mutex
	processed map[dag.NodeHandleKey]int64
	lastEpoch map[dag.NodeHandleKey]uint64
}

// NewStats returns an empty Stats ready to be shared across a run's
// worker goroutines.
func NewStats() *Stats {
	return &Stats{
		processed: make(map[dag.NodeHandleKey]int64),
		lastEpoch: make(map[dag.NodeHandleKey]uint64),
	}
}

func (s *Stats) recordProcessed(node dag.NodeHandle) {
	s.mu.Lock()
	s.processed[node.MapKey()]++
	s.mu.Unlock()
}

func (s *Stats) recordCommit(node dag.NodeHandle, epochID uint64) {
	s.mu.Lock()
	s.lastEpoch[node.MapKey()] = epochID
	s.mu.Unlock()
}

// Processed returns how many operations node has processed so far.
func (s *Stats) Processed(node dag.NodeHandle) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed[node.MapKey()]
}

// LastCommittedEpoch returns the id of the last epoch node committed,
// and whether it has committed one yet.
func (s *Stats) LastCommittedEpoch(node dag.NodeHandle) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.lastEpoch[node.MapKey()]
	return id, ok
}
