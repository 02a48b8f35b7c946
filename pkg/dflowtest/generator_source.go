// Package dflowtest provides small, dependency-free Source/Processor/Sink
// fixtures used to exercise an executor.Executor end to end: a counting
// generator source, a passthrough processor, and a counting sink, each
// with optional error/panic injection at a given message index. This
// mirrors the teacher's own point-count mock senders and counting test
// doubles, generalized to the Source/Processor/Sink shape here.
package dflowtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/operator"
	"github.com/epochflow/dflow/pkg/record"
	"github.com/epochflow/dflow/pkg/schema"
)

// IntSchema is a single not-null Int column named "n", the schema every
// fixture in this package produces and consumes.
var IntSchema = schema.Schema{
	Fields: []schema.FieldDef{{Name: "n", Type: schema.Int}},
}

// GeneratorSourceFactory builds a GeneratorSource emitting Count
// sequential Insert operations on its single output port, then
// returning. ErrorAtIndex/PanicAtIndex, if non-zero, make the source
// fail or panic at that 1-based message index instead of completing
// normally — the fixture behind spec.md's source-error and
// source-panic scenarios.
type GeneratorSourceFactory struct {
	Handle        string
	Count         int64
	ErrorAtIndex  int64
	PanicAtIndex  int64
	ConnectionTag string
}

func (f *GeneratorSourceFactory) ID() string       { return f.Handle }
func (f *GeneratorSourceFactory) TypeName() string { return "dflowtest.generator" }

func (f *GeneratorSourceFactory) GetOutputPorts() []dag.OutputPortDef {
	return []dag.OutputPortDef{{Handle: dag.DefaultPort, Type: dag.Stateless}}
}

func (f *GeneratorSourceFactory) GetOutputSchema(port dag.PortHandle) (schema.WithContext, error) {
	return schema.WithContext{Schema: IntSchema}, nil
}

func (f *GeneratorSourceFactory) Build(outputSchemas map[dag.PortHandle]schema.WithContext, rt operator.Runtime) (operator.Source, error) {
	tag := f.ConnectionTag
	if tag == "" {
		tag = f.Handle
	}
	return &generatorSource{factory: f, connectionTag: tag}, nil
}

type generatorSource struct {
	factory       *GeneratorSourceFactory
	connectionTag string
}

func (s *generatorSource) CanStartFrom(checkpoint record.TxID) bool { return false }

func (s *generatorSource) Start(ctx context.Context, fwd operator.SourceForwarder, checkpoint *record.TxID) error {
	txid := uuid.New().ID()
	for i := int64(1); i <= s.factory.Count; i++ {
		if s.factory.PanicAtIndex != 0 && i == s.factory.PanicAtIndex {
			panic(fmt.Sprintf("Generated error at index %d", i))
		}
		if s.factory.ErrorAtIndex != 0 && i == s.factory.ErrorAtIndex {
			return fmt.Errorf("Generated Error: source failed at index %d", i)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		op := record.NewInsert(record.Record{Values: []record.Field{record.NewInt(i)}})
		msg := record.IngestionMessage{
			ID:             record.TxID{Txid: uint64(txid), SeqInTx: uint64(i)},
			Kind:           record.OperationEvent,
			Op:             op,
			ConnectionName: s.connectionTag,
		}
		if err := fwd.Send(msg, dag.DefaultPort); err != nil {
			return err
		}
	}

	return fwd.Send(record.IngestionMessage{
		Kind:           record.SnapshottingDone,
		ConnectionName: s.connectionTag,
	}, dag.DefaultPort)
}
