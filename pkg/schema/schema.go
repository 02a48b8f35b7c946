// Package schema defines the field-type and schema data model shared
// across the dataflow graph, and the forward propagation pass that
// resolves every node's input and output schemas before a run starts.
package schema

import "fmt"

// FieldType enumerates the primitive value shapes a Field can hold.
type FieldType int

const (
	UInt FieldType = iota
	Int
	Float
	Decimal
	Boolean
	String
	Text
	Binary
	Timestamp
	Date
	Json
	Null
)

func (t FieldType) String() string {
	switch t {
	case UInt:
		return "UInt"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Decimal:
		return "Decimal"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case Text:
		return "Text"
	case Binary:
		return "Binary"
	case Timestamp:
		return "Timestamp"
	case Date:
		return "Date"
	case Json:
		return "Json"
	case Null:
		return "Null"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// FieldDef describes a single field of a Schema.
type FieldDef struct {
	Name       string
	Type       FieldType
	Nullable   bool
	SourceHint string
}

// Schema is an ordered list of field definitions plus the indices of the
// fields that make up the primary key. Schemas are immutable once a graph
// has been validated; nothing in this package mutates a Schema in place.
type Schema struct {
	Fields          []FieldDef
	PrimaryKeyIndex []int
}

// Clone returns a deep copy, used when handing a Schema to an operator
// factory that must not observe later mutation by another node.
func (s Schema) Clone() Schema {
	fields := make([]FieldDef, len(s.Fields))
	copy(fields, s.Fields)
	pk := make([]int, len(s.PrimaryKeyIndex))
	copy(pk, s.PrimaryKeyIndex)
	return Schema{Fields: fields, PrimaryKeyIndex: pk}
}

// WithContext pairs a Schema with an opaque, core-unaware context value
// threaded alongside it during propagation. The core never inspects
// Context; it only carries it from the node that produced the schema to
// the nodes that consume it.
type WithContext struct {
	Schema  Schema
	Context any
}
