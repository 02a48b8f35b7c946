package channel

import (
	"context"

	"github.com/epochflow/dflow/pkg/dag"
)

// DefaultBufferSize is the per-edge queue capacity used when
// ExecutorOptions.ChannelBufferSize is left at zero (spec §4.3).
const DefaultBufferSize = 20000

// Edge is one directed, bounded, FIFO queue between an output endpoint
// and an input endpoint. Producers and consumers share ownership; the
// edge lives until both the producing and the consuming worker exit.
type Edge struct {
	From Endpoint
	To   Endpoint
	ch   chan Message
}

// Endpoint mirrors dag.Endpoint; kept as a local alias so this package's
// public signatures read naturally without forcing every caller to
// import dag just to name an endpoint.
type Endpoint = dag.Endpoint

// NewEdge allocates a queue of the given capacity between two endpoints.
func NewEdge(from, to Endpoint, capacity int) *Edge {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Edge{From: from, To: to, ch: make(chan Message, capacity)}
}

// Send enqueues msg, blocking while the queue is full (the backpressure
// spec §4.3/§5 calls for) or until ctx is cancelled.
func (e *Edge) Send(ctx context.Context, msg Message) error {
	select {
	case e.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv dequeues the next message, blocking until one arrives or ctx is
// cancelled. ok is false only when ctx is done.
func (e *Edge) Recv(ctx context.Context) (Message, bool) {
	select {
	case msg := <-e.ch:
		return msg, true
	case <-ctx.Done():
		return Message{}, false
	}
}

// Chan exposes the underlying receive channel for use in a multi-way
// select (see worker.inputSet).
func (e *Edge) Chan() <-chan Message {
	return e.ch
}
