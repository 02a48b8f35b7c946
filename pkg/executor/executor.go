// Package executor wires a validated dag.Topology into running
// goroutines: it resolves schemas, builds channel edges and state
// stores, constructs every operator instance, and drives the epoch
// coordinator and worker loops until the run finishes or fails.
package executor

import (
	"context"
	"fmt"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/epochflow/dflow/pkg/channel"
	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/operator"
	"github.com/epochflow/dflow/pkg/schema"
	"github.com/epochflow/dflow/pkg/statestore"
	"github.com/epochflow/dflow/pkg/worker"
)

// Executor holds everything needed to run one dag.Topology: the
// constructed operator instances, the channel edges between them, and
// the epoch coordinator pacing commits.
type Executor struct {
	topology *dag.Topology
	opts     Options

	sources    map[dag.NodeHandleKey]operator.Source
	processors map[dag.NodeHandleKey]operator.Processor
	sinks      map[dag.NodeHandleKey]operator.Sink

	inEdges  map[dag.NodeHandleKey]map[dag.PortHandle]*channel.Edge
	routers  map[dag.NodeHandleKey]map[dag.PortHandle]*channel.OutputRouter
	allEdges []*channel.Edge

	stores map[dag.NodeHandleKey]map[dag.PortHandle]statestore.Store

	coordinator *epoch.Coordinator
	stats       *worker.Stats
}

// Stats returns the run's observability counters (spec's §2.11
// Observability Plumbing): messages processed and last committed epoch,
// per node. Safe to call concurrently with a running executor.
func (ex *Executor) Stats() *worker.Stats { return ex.stats }

// New validates g, propagates schemas, and builds every operator
// instance and channel edge, returning an Executor ready for Start.
func New(g *dag.Graph, opts ...Option) (*Executor, error) {
	o := buildOptions(opts)

	topology, err := g.Validate()
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}

	resolved, err := schema.Propagate(topology)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}

	ex := &Executor{
		topology:   topology,
		opts:       o,
		sources:    make(map[dag.NodeHandleKey]operator.Source),
		processors: make(map[dag.NodeHandleKey]operator.Processor),
		sinks:      make(map[dag.NodeHandleKey]operator.Sink),
		inEdges:    make(map[dag.NodeHandleKey]map[dag.PortHandle]*channel.Edge),
		routers:    make(map[dag.NodeHandleKey]map[dag.PortHandle]*channel.OutputRouter),
		stores:     make(map[dag.NodeHandleKey]map[dag.PortHandle]statestore.Store),
		stats:      worker.NewStats(),
	}

	if err := ex.buildEdges(); err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}

	if err := ex.buildInstances(resolved); err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}

	var sourceHandles []dag.NodeHandle
	for _, n := range topology.NodeHandles() {
		if topology.Kind(n) == dag.KindSource {
			sourceHandles = append(sourceHandles, n)
		}
	}
	ex.coordinator = epoch.NewCoordinator(sourceHandles, o.CommitSize, o.CommitInterval, o.Clock, o.Logger)

	return ex, nil
}

// buildEdges allocates one channel.Edge per dag.Edge and groups them
// into per-node input maps and per-(node,port) output routers.
func (ex *Executor) buildEdges() error {
	byOutput := make(map[dag.NodeHandleKey]map[dag.PortHandle][]*channel.Edge)

	for _, e := range ex.topology.AllEdges() {
		ce := channel.NewEdge(e.From, e.To, ex.opts.ChannelBufferSize)
		ex.allEdges = append(ex.allEdges, ce)

		toKey := e.To.Node.MapKey()
		if ex.inEdges[toKey] == nil {
			ex.inEdges[toKey] = make(map[dag.PortHandle]*channel.Edge)
		}
		if _, dup := ex.inEdges[toKey][e.To.Port]; dup {
			return fmt.Errorf("input port %s already has an edge", e.To)
		}
		ex.inEdges[toKey][e.To.Port] = ce

		fromKey := e.From.Node.MapKey()
		if byOutput[fromKey] == nil {
			byOutput[fromKey] = make(map[dag.PortHandle][]*channel.Edge)
		}
		byOutput[fromKey][e.From.Port] = append(byOutput[fromKey][e.From.Port], ce)
	}

	for nodeKey, ports := range byOutput {
		ex.routers[nodeKey] = make(map[dag.PortHandle]*channel.OutputRouter, len(ports))
		for port, edges := range ports {
			ex.routers[nodeKey][port] = channel.NewOutputRouter(edges)
		}
	}

	return nil
}

// buildInstances constructs every node's operator instance via its
// factory, handing each a nodeRuntime scoped to that node for state
// store access.
func (ex *Executor) buildInstances(resolved *schema.Propagated) error {
	for _, n := range ex.topology.NodeHandles() {
		key := n.MapKey()
		rt := &nodeRuntime{ex: ex, node: n}

		switch ex.topology.Kind(n) {
		case dag.KindSource:
			f, ok := ex.topology.Factory(n).(operator.SourceFactory)
			if !ok {
				return fmt.Errorf("node %s: factory does not implement operator.SourceFactory", n)
			}
			outputs := make(map[dag.PortHandle]schema.WithContext, len(f.GetOutputPorts()))
			for _, def := range f.GetOutputPorts() {
				ws, _ := resolved.OutputOf(n, def.Handle)
				outputs[def.Handle] = ws
				ex.registerStore(n, def)
			}
			src, err := f.Build(outputs, rt)
			if err != nil {
				return fmt.Errorf("node %s: build: %w", n, err)
			}
			ex.sources[key] = src

		case dag.KindProcessor:
			f, ok := ex.topology.Factory(n).(operator.ProcessorFactory)
			if !ok {
				return fmt.Errorf("node %s: factory does not implement operator.ProcessorFactory", n)
			}
			inputs := ex.collectInputSchemas(n, resolved)
			outputs := make(map[dag.PortHandle]schema.WithContext, len(f.GetOutputPorts()))
			for _, def := range f.GetOutputPorts() {
				ws, _ := resolved.OutputOf(n, def.Handle)
				outputs[def.Handle] = ws
				ex.registerStore(n, def)
			}
			proc, err := f.Build(inputs, outputs, rt)
			if err != nil {
				return fmt.Errorf("node %s: build: %w", n, err)
			}
			ex.processors[key] = proc

		case dag.KindSink:
			f, ok := ex.topology.Factory(n).(operator.SinkFactory)
			if !ok {
				return fmt.Errorf("node %s: factory does not implement operator.SinkFactory", n)
			}
			inputs := ex.collectInputSchemas(n, resolved)
			sink, err := f.Build(inputs, rt)
			if err != nil {
				return fmt.Errorf("node %s: build: %w", n, err)
			}
			ex.sinks[key] = sink
		}
	}
	return nil
}

func (ex *Executor) collectInputSchemas(n dag.NodeHandle, resolved *schema.Propagated) map[dag.PortHandle]schema.WithContext {
	inputs := make(map[dag.PortHandle]schema.WithContext)
	for _, e := range ex.topology.InEdges(n) {
		if ws, ok := resolved.OutputOf(e.From.Node, e.From.Port); ok {
			inputs[e.To.Port] = ws
		}
	}
	return inputs
}

func (ex *Executor) registerStore(n dag.NodeHandle, def dag.OutputPortDef) {
	if def.Type == dag.Stateless {
		return
	}
	key := n.MapKey()
	if ex.stores[key] == nil {
		ex.stores[key] = make(map[dag.PortHandle]statestore.Store)
	}
	ex.stores[key][def.Handle] = statestore.New(ex.opts.MaxMapSize)
}

// nodeRuntime implements operator.Runtime, scoped to the node it was
// built for.
type nodeRuntime struct {
	ex   *Executor
	node dag.NodeHandle
}

func (r *nodeRuntime) StateStore(port dag.PortHandle) statestore.Store {
	ports := r.ex.stores[r.node.MapKey()]
	if ports == nil {
		return nil
	}
	return ports[port]
}

func (r *nodeRuntime) MaxMapSize() int { return r.ex.opts.MaxMapSize }

// JoinHandles is returned by Start; call Join to block until the run
// finishes and obtain its first failure, if any.
type JoinHandles struct {
	group *errgroup.Group
	rs    *worker.RunState
}

// Join blocks until every worker goroutine and the epoch coordinator
// have returned, then reports the run's first recorded failure, if any.
func (j *JoinHandles) Join() error {
	_ = j.group.Wait()
	return j.rs.Err()
}

// Start launches one goroutine per node plus the epoch coordinator, all
// sharing a context cancelled on the first failure. running, if
// non-nil, is set true once every goroutine has been launched, letting
// a caller observe that the run is underway without blocking on Join.
func (ex *Executor) Start(ctx context.Context, running *atomic.Bool) *JoinHandles {
	runCtx, rs := worker.NewRunState(ctx)
	// Plain errgroup.Groups are used purely as the wait-for-all-goroutines
	// join substrate; "first error wins" is tracked by rs (worker.RunState)
	// instead of errgroup's own error capture, since every Go closure
	// below always returns nil. The coordinator runs under its own
	// context, cancelled once every node worker has returned, so Join
	// returns when the run finishes rather than waiting on ctx.
	var g, workers errgroup.Group
	coordCtx, stopCoordinator := context.WithCancel(runCtx)

	logger := ex.opts.Logger

	for _, n := range ex.topology.NodeHandles() {
		n := n
		key := n.MapKey()

		switch ex.topology.Kind(n) {
		case dag.KindSource:
			src := ex.sources[key]
			routers := ex.routers[key]
			coord := ex.coordinator
			workers.Go(func() error {
				worker.RunSource(runCtx, n, src, routers, coord, nil, rs, ex.stats, logger)
				return nil
			})

		case dag.KindProcessor:
			proc := ex.processors[key]
			inputs := ex.inEdges[key]
			routers := ex.routers[key]
			workers.Go(func() error {
				worker.RunProcessor(runCtx, n, proc, inputs, routers, rs, ex.stats, logger)
				return nil
			})

		case dag.KindSink:
			sink := ex.sinks[key]
			inputs := ex.inEdges[key]
			workers.Go(func() error {
				worker.RunSink(runCtx, n, sink, inputs, rs, ex.stats, logger)
				return nil
			})
		}
	}

	g.Go(func() error {
		return ex.coordinator.Run(coordCtx)
	})
	g.Go(func() error {
		_ = workers.Wait()
		stopCoordinator()
		return nil
	})

	if running != nil {
		running.Store(true)
	}

	return &JoinHandles{group: &g, rs: rs}
}
