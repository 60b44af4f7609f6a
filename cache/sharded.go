// Package cache provides a sharded compute-once memo table for
// immutable derived geometry.
//
// Unlike an LRU cache, entries are never evicted: swept unit geometry
// is deduplicated across a whole model, and the working set is bounded
// by the number of distinct catalogue shapes rather than by access
// recency. Concurrent requests for the same missing key share a single
// computation.
package cache

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ShardCount is the number of shards for reduced lock contention.
// Must be a power of 2 for fast modulo via bitwise AND.
const ShardCount = 16

// shardMask is used for fast shard selection (ShardCount - 1).
const shardMask = ShardCount - 1

// Hasher is a function that computes a hash for a key.
// Used by Memo for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself as the hash (identity hash).
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Memo is a thread-safe, sharded compute-once table.
//
// Features:
//   - 16 shards for reduced lock contention
//   - singleflight merging of concurrent computations per key
//   - Atomic statistics for monitoring
//   - Zero allocations on hit
//
// Values are stored as-is (not copied); callers must treat cached
// values as immutable.
type Memo[K comparable, V any] struct {
	shards [ShardCount]*memoShard[K, V]
	hasher Hasher[K]
	group  singleflight.Group

	// Statistics (atomic for zero-allocation reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// memoShard is a single shard of the table.
// Each shard has its own mutex for reduced contention.
type memoShard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewMemo creates a new sharded memo table.
//
// The hasher function is used to compute hash values for shard
// selection. Use StringHasher or Uint64Hasher for common key types.
func NewMemo[K comparable, V any](hasher Hasher[K]) *Memo[K, V] {
	m := &Memo[K, V]{hasher: hasher}
	for i := range m.shards {
		m.shards[i] = &memoShard[K, V]{entries: make(map[K]V)}
	}
	return m
}

// getShard returns the shard for a given key.
// Uses bitwise AND for fast modulo (only works with power-of-2 shard count).
func (m *Memo[K, V]) getShard(key K) *memoShard[K, V] {
	hash := m.hasher(key)
	return m.shards[hash&shardMask]
}

// Get retrieves a value by key.
// Returns (value, true) if present, (zero, false) otherwise.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	shard := m.getShard(key)

	shard.mu.RLock()
	value, ok := shard.entries[key]
	shard.mu.RUnlock()

	if ok {
		m.hits.Add(1)
		return value, true
	}
	m.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores a value, replacing any existing entry.
func (m *Memo[K, V]) Set(key K, value V) {
	shard := m.getShard(key)
	shard.mu.Lock()
	shard.entries[key] = value
	shard.mu.Unlock()
}

// GetOrCompute returns the value for key, computing and storing it on
// first use. Concurrent callers for the same missing key share one
// invocation of compute; all receive its result. When compute fails
// nothing is stored and every merged caller receives the error.
//
// Flight merging keys on the default string form of K, so K's string
// form must be unique per key (integer and string keys are).
func (m *Memo[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	shard := m.getShard(key)

	shard.mu.RLock()
	value, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		m.hits.Add(1)
		return value, nil
	}
	m.misses.Add(1)

	flightKey := fmt.Sprintf("%v", key)
	v, err, _ := m.group.Do(flightKey, func() (any, error) {
		// Re-check: an earlier flight may have stored the value
		// between our miss and this call.
		shard.mu.RLock()
		value, ok := shard.entries[key]
		shard.mu.RUnlock()
		if ok {
			return value, nil
		}

		value, err := compute()
		if err != nil {
			var zero V
			return zero, err
		}

		shard.mu.Lock()
		shard.entries[key] = value
		shard.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Delete removes an entry.
// Returns true if the entry was found and removed.
func (m *Memo[K, V]) Delete(key K) bool {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.entries[key]; !ok {
		return false
	}
	delete(shard.entries, key)
	return true
}

// Clear removes all entries.
func (m *Memo[K, V]) Clear() {
	for _, shard := range m.shards {
		shard.mu.Lock()
		shard.entries = make(map[K]V)
		shard.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (m *Memo[K, V]) Len() int {
	total := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// ShardLen returns the number of entries in each shard.
// Useful for debugging load distribution.
func (m *Memo[K, V]) ShardLen() [ShardCount]int {
	var lens [ShardCount]int
	for i, shard := range m.shards {
		shard.mu.RLock()
		lens[i] = len(shard.entries)
		shard.mu.RUnlock()
	}
	return lens
}

// Stats holds memo table statistics.
type Stats struct {
	Len     int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Stats returns current statistics.
// This operation is mostly lock-free (atomic counters).
func (m *Memo[K, V]) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:     m.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

// ResetStats resets all statistics counters to zero.
func (m *Memo[K, V]) ResetStats() {
	m.hits.Store(0)
	m.misses.Store(0)
}
