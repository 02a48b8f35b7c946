package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/epochflow/dflow/pkg/channel"
	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/operator"
)

// RunProcessor pumps messages from a processor's input edges to its
// Process method, aligning epoch markers across every input port before
// calling Commit and re-broadcasting the marker downstream (spec §4.5:
// a node commits only once every input has observed the same epoch).
func RunProcessor(
	ctx context.Context,
	node dag.NodeHandle,
	proc operator.Processor,
	inputs map[dag.PortHandle]*channel.Edge,
	outputRouters map[dag.PortHandle]*channel.OutputRouter,
	rs *RunState,
	stats *Stats,
	logger *zap.Logger,
) {
	defer broadcastTerminate(ctx, outputRouters)

	forwarder := channel.NewProcessorForwarder(ctx, outputRouters)

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
				return proc.Process(msg.FromPort, msg.Op, forwarder)
			})
			if err != nil {
				rs.Fail(err)
				logger.Error("processor failed", zap.String("node", node.String()), zap.Error(err))
				return
			}
			if stats != nil {
				stats.recordProcessed(node)
			}

		case channel.SnapshottingDone:
			for port, r := range outputRouters {
				_ = r.Send(ctx, channel.Message{Kind: channel.SnapshottingDone, FromPort: port, ConnectionName: msg.ConnectionName})
			}

		case channel.EpochMarker:
			if pendingEpoch == nil || pendingEpoch.ID != msg.Epoch.ID {
				pendingEpoch = &msg.Epoch
				markerSeen = make(map[dag.PortHandle]bool, len(inputs))
			}
			markerSeen[msg.FromPort] = true
			if len(markerSeen) == len(inputs) {
				ep := *pendingEpoch
				if err := runProtected(node.String(), func() error { return proc.Commit(&ep) }); err != nil {
					rs.Fail(&EpochCommitError{NodeID: node.String(), EpochID: ep.ID, Cause: err})
					logger.Error("processor commit failed", zap.String("node", node.String()), zap.Error(err))
					return
				}
				forwarder.BroadcastEpoch(ep)
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
