package dflowtest

import (
	"fmt"
	"sync/atomic"

	"github.com/epochflow/dflow/pkg/dag"
	"github.com/epochflow/dflow/pkg/epoch"
	"github.com/epochflow/dflow/pkg/operator"
	"github.com/epochflow/dflow/pkg/record"
	"github.com/epochflow/dflow/pkg/schema"
)

// PassthroughProcessorFactory builds a processor that forwards every
// operation from its single input port to its single output port
// unchanged, counting how many it has seen. ErrorAtIndex/PanicAtIndex
// inject a failure or panic on the Nth operation instead.
type PassthroughProcessorFactory struct {
	Handle       string
	ErrorAtIndex int64
	PanicAtIndex int64
}

func (f *PassthroughProcessorFactory) ID() string       { return f.Handle }
func (f *PassthroughProcessorFactory) TypeName() string { return "dflowtest.passthrough" }

func (f *PassthroughProcessorFactory) GetInputPorts() []dag.PortHandle {
	return []dag.PortHandle{dag.DefaultPort}
}

func (f *PassthroughProcessorFactory) GetOutputPorts() []dag.OutputPortDef {
	return []dag.OutputPortDef{{Handle: dag.DefaultPort, Type: dag.Stateless}}
}

func (f *PassthroughProcessorFactory) GetOutputSchema(outputPort dag.PortHandle, inputSchemas map[dag.PortHandle]schema.WithContext) (schema.WithContext, error) {
	return inputSchemas[dag.DefaultPort], nil
}

func (f *PassthroughProcessorFactory) Build(inputSchemas, outputSchemas map[dag.PortHandle]schema.WithContext, rt operator.Runtime) (operator.Processor, error) {
	return &passthroughProcessor{factory: f}, nil
}

type passthroughProcessor struct {
	factory *PassthroughProcessorFactory
	count   atomic.Int64
}

func (p *passthroughProcessor) Process(fromPort dag.PortHandle, op record.Operation, fwd operator.ProcessorForwarder) error {
	n := p.count.Add(1)

	if p.factory.PanicAtIndex != 0 && n == p.factory.PanicAtIndex {
		panic(fmt.Sprintf("Generated error at index %d", n))
	}
	if p.factory.ErrorAtIndex != 0 && n == p.factory.ErrorAtIndex {
		return fmt.Errorf("Uknown: error at index %d", n)
	}

	fwd.Send(op, dag.DefaultPort)
	return nil
}

func (p *passthroughProcessor) Commit(e *epoch.Epoch) error { return nil }
