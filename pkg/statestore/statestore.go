// Package statestore provides the bounded, per-port map the executor
// hands to stateful operators (spec SPEC_FULL.md §2.10): a home for
// OutputPortType's StatefulWithPrimaryKeyLookup/Stateful bit that the
// core itself never reads or writes.
package statestore

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/epochflow/dflow/pkg/record"
)

// Store is a bounded key/value map an operator can use to retain history
// for its own downstream lookups. The core never inspects its contents.
type Store interface {
	Get(key string) (record.Record, bool)
	Put(key string, rec record.Record)
	Remove(key string)
	Len() int
}

// lruStore backs Store with an LRU eviction policy, capped at the
// ExecutorOptions.MaxMapSize advisory bound.
type lruStore struct {
	cache *lru.Cache[string, record.Record]
}

// New returns a Store capped at size entries. size must be positive.
func New(size int) Store {
	c, err := lru.New[string, record.Record](size)
	if err != nil {
		// lru.New only errors on a non-positive size; callers are
		// expected to validate ExecutorOptions.MaxMapSize up front, so
		// this indicates a programming error rather than a runtime
		// condition worth propagating as an error return.
		panic(err)
	}
	return &lruStore{cache: c}
}

func (s *lruStore) Get(key string) (record.Record, bool) { return s.cache.Get(key) }
func (s *lruStore) Put(key string, rec record.Record)    { s.cache.Add(key, rec) }
func (s *lruStore) Remove(key string)                    { s.cache.Remove(key) }
func (s *lruStore) Len() int                              { return s.cache.Len() }
