// Package record defines the wire-level data carried on every edge of the
// dataflow graph: typed field values, records built from them, and the
// Insert/Delete/Update operations sources and processors exchange.
package record

import (
	"encoding/json"
	"time"

	"github.com/epochflow/dflow/pkg/schema"
)

// Field is a single typed value. Exactly the members matching Type are
// meaningful; the others are zero. This mirrors a tagged union without
// requiring a type assertion on every read.
type Field struct {
	Type    schema.FieldType
	UInt    uint64
	Int     int64
	Float   float64
	Decimal string // decimal literal, e.g. "12.3400"; no arithmetic is performed by the core
	Bool    bool
	Str     string
	Binary  []byte
	Time    time.Time
	JSON    json.RawMessage
}

func NewUInt(v uint64) Field         { return Field{Type: schema.UInt, UInt: v} }
func NewInt(v int64) Field           { return Field{Type: schema.Int, Int: v} }
func NewFloat(v float64) Field       { return Field{Type: schema.Float, Float: v} }
func NewDecimal(v string) Field      { return Field{Type: schema.Decimal, Decimal: v} }
func NewBoolean(v bool) Field        { return Field{Type: schema.Boolean, Bool: v} }
func NewString(v string) Field       { return Field{Type: schema.String, Str: v} }
func NewText(v string) Field         { return Field{Type: schema.Text, Str: v} }
func NewBinary(v []byte) Field       { return Field{Type: schema.Binary, Binary: v} }
func NewTimestamp(v time.Time) Field { return Field{Type: schema.Timestamp, Time: v} }
func NewDate(v time.Time) Field      { return Field{Type: schema.Date, Time: v} }
func NewJSON(v json.RawMessage) Field {
	return Field{Type: schema.Json, JSON: v}
}
func NewNull() Field { return Field{Type: schema.Null} }

// Record is an ordered tuple of Fields plus an optional retention hint
// and an optional reference to the Schema it was produced under.
type Record struct {
	Values   []Field
	Lifetime *time.Duration
	SchemaID *uint64
}

// OperationKind tags the variant carried by an Operation.
type OperationKind int

const (
	Insert OperationKind = iota
	Delete
	Update
)

func (k OperationKind) String() string {
	switch k {
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	case Update:
		return "Update"
	default:
		return "Unknown"
	}
}

// Operation is the tagged union Insert{new}/Delete{old}/Update{old,new}
// that ordinary dataflow messages carry.
type Operation struct {
	Kind OperationKind
	Old  Record // valid for Delete and Update
	New  Record // valid for Insert and Update
}

func NewInsert(new Record) Operation      { return Operation{Kind: Insert, New: new} }
func NewDelete(old Record) Operation      { return Operation{Kind: Delete, Old: old} }
func NewUpdate(old, new Record) Operation { return Operation{Kind: Update, Old: old, New: new} }

// TxID identifies the position of one message within a source's stream:
// an opaque transaction identifier plus the message's sequence number
// within that transaction. Sources must emit strictly increasing TxIDs.
type TxID struct {
	Txid      uint64
	SeqInTx   uint64
}

// Less reports whether id strictly precedes other, comparing Txid first
// and SeqInTx as the tiebreaker.
func (id TxID) Less(other TxID) bool {
	if id.Txid != other.Txid {
		return id.Txid < other.Txid
	}
	return id.SeqInTx < other.SeqInTx
}

// IngestionKind tags the variant carried by an IngestionMessage.
type IngestionKind int

const (
	OperationEvent IngestionKind = iota
	SnapshottingDone
	EpochMarker
)

// IngestionMessage is what a Source emits: an identifier for ordering and
// resumption, plus one of an operation event, a snapshot-complete
// notification, or (internally) an epoch marker request.
type IngestionMessage struct {
	ID             TxID
	Kind           IngestionKind
	Op             Operation // valid when Kind == OperationEvent
	ConnectionName string    // valid when Kind == SnapshottingDone
}
