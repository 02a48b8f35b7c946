package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/epochflow/dflow/pkg/channel"
	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/operator"
)

// RunSink pumps messages from a sink's input edges to its Process
// method, aligning epoch markers across every input port before calling
// Commit, and invoking OnSourceSnapshottingDone as SnapshottingDone
// messages pass through.
func RunSink(
	ctx context.Context,
	node dag.NodeHandle,
	sink operator.Sink,
	inputs map[dag.PortHandle]*channel.Edge,
	rs *RunState,
	stats *Stats,
	logger *zap.Logger,
) {
	edges := make([]*channel.Edge, 0, len(inputs))
	for _, e := range inputs {
		edges = append(edges, e)
	}
	set := newInputSet(ctx, edges)

	markerSeen := make(map[dag.PortHandle]bool, len(inputs))
	terminated := make(map[dag.PortHandle]bool, len(inputs))
	var pendingEpoch *epoch.Epoch

	for {
		msg, ok := set.recv()
		if !ok {
			return
		}

		switch msg.Kind {
		case channel.Op:
			err := runProtected(node.String(), func() error {
				return sink.Process(msg.FromPort, msg.Op)
			})
			if err != nil {
				rs.Fail(err)
				logger.Error("sink failed", zap.String("node", node.String()), zap.Error(err))
				return
			}
			if stats != nil {
				stats.recordProcessed(node)
			}

		case channel.SnapshottingDone:
			if err := runProtected(node.String(), func() error {
				return sink.OnSourceSnapshottingDone(msg.ConnectionName)
			}); err != nil {
				rs.Fail(err)
				logger.Error("sink OnSourceSnapshottingDone failed", zap.String("node", node.String()), zap.Error(err))
				return
			}

		case channel.EpochMarker:
			if pendingEpoch == nil || pendingEpoch.ID != msg.Epoch.ID {
				pendingEpoch = &msg.Epoch
				markerSeen = make(map[dag.PortHandle]bool, len(inputs))
			}
			markerSeen[msg.FromPort] = true
			if len(markerSeen) == len(inputs) {
				ep := *pendingEpoch
				if err := runProtected(node.String(), func() error { return sink.Commit(&ep) }); err != nil {
					rs.Fail(&EpochCommitError{NodeID: node.String(), EpochID: ep.ID, Cause: err})
					logger.Error("sink commit failed", zap.String("node", node.String()), zap.Error(err))
					return
				}
				if stats != nil {
					stats.recordCommit(node, ep.ID)
				}
				pendingEpoch = nil
				markerSeen = make(map[dag.PortHandle]bool, len(inputs))
			}

		case channel.Terminate:
			terminated[msg.FromPort] = true
			if len(terminated) == len(inputs) {
				return
			}
		}
	}
}
