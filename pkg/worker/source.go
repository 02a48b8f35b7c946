package worker

import (
	"context"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/epochflow/dflow/pkg/channel"
	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/operator"
	"github.com/epochflow/dflow/pkg/record"
)

// RunSource drives a Source to exhaustion, forwarding its output and
// contributing its progress to the epoch coordinator. It returns when
// the source finishes, fails, panics, or ctx is cancelled, always
// emitting a Terminate message on every output router so downstream
// workers unwind in turn.
func RunSource(
	ctx context.Context,
	node dag.NodeHandle,
	src operator.Source,
	routers map[dag.PortHandle]*channel.OutputRouter,
	coord *epoch.Coordinator,
	checkpoint *record.TxID,
	rs *RunState,
	stats *Stats,
	logger *zap.Logger,
) {
	defer broadcastTerminate(ctx, routers)

	var control <-chan epoch.Epoch
	if coord != nil {
		control = coord.ControlChannel(node)
	}

	heartbeat := func(id record.TxID) {
		if coord != nil {
			coord.Heartbeat(node, id)
		}
		if stats != nil {
			stats.recordProcessed(node)
		}
	}

	forwarder := channel.NewSourceForwarder(ctx, routers, control, heartbeat)

	if checkpoint != nil && !src.CanStartFrom(*checkpoint) {
		rs.Fail(&OperatorError{NodeID: node.String(), Cause: errUnsupportedResume{checkpoint: *checkpoint}})
		return
	}

	err := runProtected(node.String(), func() error {
		return src.Start(ctx, forwarder, checkpoint)
	})
	if err != nil && ctx.Err() == nil {
		rs.Fail(err)
		logger.Error("source failed", zap.String("node", node.String()), zap.Error(err))
	}
}

func broadcastTerminate(ctx context.Context, routers map[dag.PortHandle]*channel.OutputRouter) {
	for port, r := range routers {
		_ = r.Send(context.Background(), channel.Message{Kind: channel.Terminate, FromPort: port})
		_ = ctx
	}
}

// runProtected invokes fn, converting a recovered panic into an
// *OperatorPanic and a returned error into an *OperatorError, so every
// failure a worker loop observes from an operator call is uniformly
// attributed to nodeID instead of letting a raw connector error or a
// panic unwind past the worker goroutine.
func runProtected(nodeID string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &OperatorPanic{NodeID: nodeID, Value: r, Stack: debug.Stack()}
		}
	}()
	if err := fn(); err != nil {
		return &OperatorError{NodeID: nodeID, Cause: err}
	}
	return nil
}

type errUnsupportedResume struct {
	checkpoint record.TxID
}

func (e errUnsupportedResume) Error() string {
	return "source cannot resume from the given checkpoint"
}
