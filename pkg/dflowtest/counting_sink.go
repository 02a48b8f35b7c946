package dflowtest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/operator"
	"github.com/epochflow/dflow/pkg/record"
	"github.com/epochflow/dflow/pkg/schema"
)

// CountingSinkFactory builds a sink that counts every operation it
// observes and records every committed epoch, the fixture behind every
// end-to-end scenario's assertions. ErrorAtIndex injects a failure on
// the Nth operation.
type CountingSinkFactory struct {
	Handle       string
	ErrorAtIndex int64
	Sink         *CountingSink
}

func (f *CountingSinkFactory) ID() string       { return f.Handle }
func (f *CountingSinkFactory) TypeName() string { return "dflowtest.counting_sink" }

func (f *CountingSinkFactory) GetInputPorts() []dag.PortHandle {
	return []dag.PortHandle{dag.DefaultPort}
}

func (f *CountingSinkFactory) Prepare(inputSchemas map[dag.PortHandle]schema.WithContext) error {
	return nil
}

func (f *CountingSinkFactory) Build(inputSchemas map[dag.PortHandle]schema.WithContext, rt operator.Runtime) (operator.Sink, error) {
	if f.Sink == nil {
		f.Sink = &CountingSink{}
	}
	f.Sink.errorAtIndex = f.ErrorAtIndex
	return f.Sink, nil
}

// CountingSink is both the operator.Sink implementation and the
// assertion surface a test reads back from after a run: Count() for how
// many operations were observed, and Epochs() for every epoch it has
// committed, in commit order.
type CountingSink struct {
	errorAtIndex int64
	count        atomic.Int64

	mu            sync.Mutex
	epochs        []epoch.Epoch
	snapshotsDone []string
}

func (s *CountingSink) Process(fromPort dag.PortHandle, op record.Operation) error {
	n := s.count.Add(1)
	if s.errorAtIndex != 0 && n == s.errorAtIndex {
		return fmt.Errorf("Uknown: sink error at index %d", n)
	}
	return nil
}

func (s *CountingSink) Commit(e *epoch.Epoch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochs = append(s.epochs, *e)
	return nil
}

func (s *CountingSink) OnSourceSnapshottingDone(connectionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotsDone = append(s.snapshotsDone, connectionName)
	return nil
}

// Count returns the number of operations observed so far.
func (s *CountingSink) Count() int64 { return s.count.Load() }

// Epochs returns every epoch committed so far, in commit order.
func (s *CountingSink) Epochs() []epoch.Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]epoch.Epoch, len(s.epochs))
	copy(out, s.epochs)
	return out
}

// SnapshottingDoneConnections returns every connection name reported via
// OnSourceSnapshottingDone, in order.
func (s *CountingSink) SnapshottingDoneConnections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.snapshotsDone))
	copy(out, s.snapshotsDone)
	return out
}
