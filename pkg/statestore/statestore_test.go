package statestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epochflow/dflow/pkg/record"
)

func TestStorePutGetRemove(t *testing.T) {
	s := New(2)

	rec := record.Record{Values: []record.Field{record.NewInt(42)}}
	s.Put("a", rec)

	got, ok := s.Get("a")
	require.True(t, ok)
	require.Len(t, got.Values, 1)
	assert.Equal(t, int64(42), got.Values[0].Int)

	s.Remove("a")
	_, ok = s.Get("a")
	assert.False(t, ok, "expected the entry to be gone after Remove")
}

func TestStoreEvictsBeyondCapacity(t *testing.T) {
	s := New(1)
	s.Put("a", record.Record{})
	s.Put("b", record.Record{})

	assert.Equal(t, 1, s.Len(), "expected the store to stay capped at 1 entry")
	_, ok := s.Get("a")
	assert.False(t, ok, "expected the least-recently-used entry to have been evicted")
}
