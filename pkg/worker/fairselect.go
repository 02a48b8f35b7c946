package worker

import (
	"context"
	"reflect"

	"github.com/epochflow/dflow/pkg/channel"
)

// inputSet reads fairly across an arbitrary number of input edges. With
// exactly one edge it falls onto a plain two-way select (the common
// case, and the one spec §8 scenario 1 drives a million messages
// through); with more than one it builds a reflect.Select, whose
// pseudo-random tie-break among ready cases is what gives every input
// port an equal chance of being serviced instead of processing always
// draining the first-declared port under sustained backpressure.
type inputSet struct {
	edges []*channel.Edge
	ctx   context.Context

	cases []reflect.SelectCase
}

func newInputSet(ctx context.Context, edges []*channel.Edge) *inputSet {
	s := &inputSet{ctx: ctx, edges: edges}
	if len(edges) > 1 {
		s.cases = make([]reflect.SelectCase, len(edges)+1)
		for i, e := range edges {
			s.cases[i] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(e.Chan())}
		}
		s.cases[len(edges)] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())}
	}
	return s
}

// recv blocks until a message is available on any edge or ctx is done.
// ok is false only on cancellation.
func (s *inputSet) recv() (channel.Message, bool) {
	switch len(s.edges) {
	case 1:
		return s.edges[0].Recv(s.ctx)
	default:
		chosen, v, recvOK := reflect.Select(s.cases)
		if chosen == len(s.edges) || !recvOK {
			return channel.Message{}, false
		}
		return v.Interface().(channel.Message), true
	}
}
