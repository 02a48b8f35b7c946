package channel

import (
	"context"
	"sync"

	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/record"
)

// SourceForwarder routes a source's ingestion messages to the
// OutputRouter registered for each of its output ports, translating
// record.IngestionMessage into channel.Message and interleaving epoch
// markers received from the coordinator's control channel in between
// ordinary sends. It implements operator.SourceForwarder structurally.
type SourceForwarder struct {
	ctx       context.Context
	routers   map[dag.PortHandle]*OutputRouter
	control   <-chan epoch.Epoch
	heartbeat func(record.TxID)

	mu      sync.Mutex
	pending *epoch.Epoch
}

// NewSourceForwarder builds a forwarder over the given per-port routers,
// draining epoch markers from control as they arrive. heartbeat, if
// non-nil, is invoked with every operation's identifier so the epoch
// coordinator can track this source's progress; it may be nil for
// sources that never participate in checkpointing (none do, in
// practice, but the zero value keeps tests that build a forwarder
// standalone simple).
func NewSourceForwarder(ctx context.Context, routers map[dag.PortHandle]*OutputRouter, control <-chan epoch.Epoch, heartbeat func(record.TxID)) *SourceForwarder {
	return &SourceForwarder{ctx: ctx, routers: routers, control: control, heartbeat: heartbeat}
}

// Send forwards msg to the router for port, first draining and
// broadcasting any epoch marker that has arrived on the control channel
// since the last Send. This keeps marker delivery interleaved with
// ordinary operations in the same relative order the source produced
// them, without requiring the source itself to know about epochs.
func (f *SourceForwarder) Send(msg record.IngestionMessage, port dag.PortHandle) error {
	if err := f.drainPendingMarker(port); err != nil {
		return err
	}

	r, ok := f.routers[port]
	if !ok {
		return &UnknownOutputPortError{Port: port}
	}

	switch msg.Kind {
	case record.OperationEvent:
		if f.heartbeat != nil {
			f.heartbeat(msg.ID)
		}
		return r.Send(f.ctx, Message{Kind: Op, FromPort: port, Op: msg.Op})
	case record.SnapshottingDone:
		return r.Send(f.ctx, Message{Kind: SnapshottingDone, FromPort: port, ConnectionName: msg.ConnectionName})
	case record.EpochMarker:
		// Sources never originate their own epoch markers; those come
		// from the coordinator via f.control instead.
		return nil
	default:
		return nil
	}
}

// drainPendingMarker checks (non-blocking) for a freshly arrived epoch
// marker and, if present or already buffered, broadcasts it to every
// output port's router before the next ordinary send proceeds.
func (f *SourceForwarder) drainPendingMarker(port dag.PortHandle) error {
	f.mu.Lock()
	select {
	case ep, ok := <-f.control:
		if ok {
			f.pending = &ep
		}
	default:
	}
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()

	if pending == nil {
		return nil
	}
	for p, r := range f.routers {
		if err := r.Send(f.ctx, Message{Kind: EpochMarker, FromPort: p, Epoch: *pending}); err != nil {
			return err
		}
	}
	_ = port
	return nil
}

// ProcessorForwarder routes a processor's emitted operations to the
// OutputRouter for the given port. Processors never fail to send (spec
// §4.4): it implements operator.ProcessorForwarder, whose Send is
// infallible, by blocking until the router accepts the message or the
// run context is cancelled — cancellation is surfaced only by the
// worker loop observing ctx.Err() itself, not by this call.
type ProcessorForwarder struct {
	ctx     context.Context
	routers map[dag.PortHandle]*OutputRouter
}

// NewProcessorForwarder builds a forwarder over the given per-port routers.
func NewProcessorForwarder(ctx context.Context, routers map[dag.PortHandle]*OutputRouter) *ProcessorForwarder {
	return &ProcessorForwarder{ctx: ctx, routers: routers}
}

// Send forwards op to port's router, silently dropping it if ctx is
// already cancelled or the port is unknown (both indicate the pipeline
// is shutting down or misconfigured in a way the caller cannot act on,
// matching the infallible Send signature of operator.ProcessorForwarder).
func (f *ProcessorForwarder) Send(op record.Operation, port dag.PortHandle) {
	r, ok := f.routers[port]
	if !ok {
		return
	}
	_ = r.Send(f.ctx, Message{Kind: Op, FromPort: port, Op: op})
}

// BroadcastEpoch forwards an epoch marker received by a processor's
// worker loop to every one of the processor's output ports, after the
// processor's Commit has returned.
func (f *ProcessorForwarder) BroadcastEpoch(ep epoch.Epoch) {
	for port, r := range f.routers {
		_ = r.Send(f.ctx, Message{Kind: EpochMarker, FromPort: port, Epoch: ep})
	}
}

// UnknownOutputPortError reports a send to a port the forwarder has no
// router for, which indicates a mismatch between the dag's declared
// output ports and the channels the executor actually built.
type UnknownOutputPortError struct {
	Port dag.PortHandle
}

func (e *UnknownOutputPortError) Error() string {
	return "channel: no router registered for output port"
}
