package epoch

import (
	"context"
	"sync"

	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/record"
)

// Coordinator assigns monotonic epoch ids and distributes them to every
// source on a cadence: whichever of the wall-clock interval or the
// message-count threshold fires first (spec §4.5.1).
type Coordinator struct {
	sources []dag.NodeHandle
	control map[dag.NodeHandleKey]chan Epoch

	commitSize     int64
	commitInterval time.Duration
	clock          clock.Clock
	logger         *zap.Logger

	mu          sync.Mutex
	checkpoints map[dag.NodeHandleKey]record.TxID

	msgCount atomic.Int64
	trigger  chan struct{}
	nextID   uint64
}

// NewCoordinator builds a coordinator for the given sources. clk may be a
// *clock.Mock in tests to drive the commit-interval timer deterministically,
// matching the pattern the reference corpus uses for its batch-flush tests.
func NewCoordinator(sources []dag.NodeHandle, commitSize int64, commitInterval time.Duration, clk clock.Clock, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		sources:        sources,
		control:        make(map[dag.NodeHandleKey]chan Epoch, len(sources)),
		commitSize:     commitSize,
		commitInterval: commitInterval,
		clock:          clk,
		logger:         logger,
		checkpoints:    make(map[dag.NodeHandleKey]record.TxID, len(sources)),
		trigger:        make(chan struct{}, 1),
	}
	for _, s := range sources {
		c.control[s.MapKey()] = make(chan Epoch, 1)
	}
	return c
}

// ControlChannel returns the channel a source worker should receive
// epoch markers on.
func (c *Coordinator) ControlChannel(node dag.NodeHandle) <-chan Epoch {
	return c.control[node.MapKey()]
}

// Heartbeat records a source's latest processed identifier and nudges the
// coordinator to cut an epoch early once the cumulative message count
// reaches commitSize.
func (c *Coordinator) Heartbeat(node dag.NodeHandle, id record.TxID) {
	c.mu.Lock()
	c.checkpoints[node.MapKey()] = id
	c.mu.Unlock()

	if c.commitSize > 0 && c.msgCount.Add(1) >= c.commitSize {
		select {
		case c.trigger <- struct{}{}:
		default:
		}
	}
}

// Run drives the coordinator's main loop until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	timer := c.clock.Timer(c.commitInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			c.emit(ctx)
			timer.Reset(c.commitInterval)
		case <-c.trigger:
			c.emit(ctx)
			timer.Reset(c.commitInterval)
		}
	}
}

func (c *Coordinator) emit(ctx context.Context) {
	c.mu.Lock()
	details := make(map[dag.NodeHandleKey]record.TxID, len(c.checkpoints))
	for k, v := range c.checkpoints {
		details[k] = v
	}
	c.mu.Unlock()

	c.msgCount.Store(0)

	ep := Epoch{ID: c.nextID, Details: details}
	c.nextID++

	c.logger.Debug("epoch: emitting marker", zap.Uint64("epoch_id", ep.ID), zap.Int("sources", len(c.sources)))

	for _, src := range c.sources {
		select {
		case c.control[src.MapKey()] <- ep.clone():
		case <-ctx.Done():
			return
		}
	}
}
