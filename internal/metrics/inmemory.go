package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated          uint64
	UsersUpdated          uint64
	UsersDeleted          uint64
	LookupCacheHits       uint64
	LookupCacheMisses     uint64
	LookupDurationCount   uint64
	LookupDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersCreated          uint64
	usersUpdated          uint64
	usersDeleted          uint64
	lookupCacheHits       uint64
	lookupCacheMisses     uint64
	lookupDurationCount   uint64
	lookupDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:          atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:          atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:          atomic.LoadUint64(&m.usersDeleted),
		LookupCacheHits:       atomic.LoadUint64(&m.lookupCacheHits),
		LookupCacheMisses:     atomic.LoadUint64(&m.lookupCacheMisses),
		LookupDurationCount:   atomic.LoadUint64(&m.lookupDurationCount),
		LookupDurationTotalNs: atomic.LoadInt64(&m.lookupDurationTotalNs),
	}
}

// IncUserCreated increments the created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments the updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncLookupCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncLookupCacheHit() {
	atomic.AddUint64(&m.lookupCacheHits, 1)
}

// IncLookupCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncLookupCacheMiss() {
	atomic.AddUint64(&m.lookupCacheMisses, 1)
}

// ObserveLookupDuration records a lookup duration.
func (m *InMemoryRecorder) ObserveLookupDuration(duration time.Duration) {
	atomic.AddUint64(&m.lookupDurationCount, 1)
	atomic.AddInt64(&m.lookupDurationTotalNs, duration.Nanoseconds())
}
