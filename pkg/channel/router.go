package channel

import (
	"context"
	"sort"
)

// OutputRouter fans a single output port out to every edge connected to
// it. Per spec §4.3, fan-out is explicit duplication at the send site in
// a deterministic order, not a broadcast primitive: the send blocks on
// each destination edge in turn, so backpressure propagates head-of-line
// to the slowest consumer.
type OutputRouter struct {
	edges []*Edge
}

// NewOutputRouter builds a router over edges, fixing their send order by
// destination endpoint so fan-out is deterministic across runs.
func NewOutputRouter(edges []*Edge) *OutputRouter {
	sorted := append([]*Edge(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].To.Node.String() != sorted[j].To.Node.String() {
			return sorted[i].To.Node.String() < sorted[j].To.Node.String()
		}
		return sorted[i].To.Port < sorted[j].To.Port
	})
	return &OutputRouter{edges: sorted}
}

// Send offers msg to every destination edge in order, blocking on each.
func (r *OutputRouter) Send(ctx context.Context, msg Message) error {
	for _, e := range r.edges {
		if err := e.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Len reports the number of destination edges.
func (r *OutputRouter) Len() int { return len(r.edges) }
