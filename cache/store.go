package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// entryOverhead approximates the per-entry bookkeeping cost (list node,
// map slot, timestamps) added to the artifact length when accounting bytes.
const entryOverhead = 128

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Entries     int   `json:"entries"`
	Bytes       int64 `json:"bytes"`
	MaxEntries  int   `json:"max_entries"`
	MaxBytes    int64 `json:"max_bytes"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
	Flights     int64 `json:"flights"`
	Shared      int64 `json:"shared"`
	Rejected    int64 `json:"rejected"`
}

// Store is a bounded, concurrent key to artifact store.
//
// Entries are evicted least-recently-used first when either MaxEntries or
// MaxBytes would be exceeded, and expire TTL after they were written.
// Reads never wait on a computation.
type Store struct {
	policy Policy
	lru    *expirable.LRU[Key, Entry]

	// mu serializes writes so byte accounting and eviction stay consistent.
	// Reads go straight to the LRU.
	mu      sync.Mutex
	flights singleflight.Group

	bytes       atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	computed    atomic.Int64
	shared      atomic.Int64
	rejected    atomic.Int64
}

// NewStore creates a store with the given policy. Zero policy fields take
// their defaults.
func NewStore(policy Policy) *Store {
	policy = policy.WithDefaults()
	s := &Store{policy: policy}
	s.lru = expirable.NewLRU[Key, Entry](policy.MaxEntries, s.onRemove, policy.TTL)
	return s
}

// Policy returns the effective policy of the store.
func (s *Store) Policy() Policy {
	return s.policy
}

// Get returns a copy of the entry stored under key.
// Returns (Entry{}, false) on miss or expiry.
func (s *Store) Get(key Key) (Entry, bool) {
	e, ok := s.lru.Get(key)
	if !ok {
		s.misses.Add(1)
		return Entry{}, false
	}
	s.hits.Add(1)
	return e.Clone(), true
}

// Contains reports whether a fresh entry exists for key without touching
// recency or counters.
func (s *Store) Contains(key Key) bool {
	_, ok := s.lru.Peek(key)
	return ok
}

// Put stores an entry under key. The artifact is copied. Entries larger
// than the byte budget are not stored and Put reports false.
func (s *Store) Put(key Key, e Entry) bool {
	if err := ValidateKey(key); err != nil {
		return false
	}
	e = s.prepare(key, e)
	if !s.policy.Admits(e.SizeBytes) {
		s.rejected.Add(1)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Remove first so the eviction callback releases the old size.
	s.lru.Remove(key)

	s.bytes.Add(int64(e.SizeBytes))
	if s.lru.Add(key, e) {
		s.evictions.Add(1)
	}
	for s.bytes.Load() > s.policy.MaxBytes {
		if _, _, ok := s.lru.RemoveOldest(); !ok {
			break
		}
		s.evictions.Add(1)
	}
	return true
}

// Delete removes key. Idempotent - reports whether an entry was removed.
func (s *Store) Delete(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Remove(key)
}

// Purge removes every entry.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Purge()
}

// Len returns the number of stored entries, including expired entries the
// sweeper has not yet collected.
func (s *Store) Len() int {
	return s.lru.Len()
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	return Stats{
		Entries:     s.lru.Len(),
		Bytes:       s.bytes.Load(),
		MaxEntries:  s.policy.MaxEntries,
		MaxBytes:    s.policy.MaxBytes,
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		Evictions:   s.evictions.Load(),
		Expirations: s.expirations.Load(),
		Flights:     s.computed.Load(),
		Shared:      s.shared.Load(),
		Rejected:    s.rejected.Load(),
	}
}

func (s *Store) prepare(key Key, e Entry) Entry {
	e = e.Clone()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.SizeBytes = len(e.Artifact) + len(key) + len(e.Format) + entryOverhead
	return e
}

// onRemove runs inside the LRU lock (including from its expiry sweeper),
// so it must only touch atomics.
func (s *Store) onRemove(_ Key, e Entry) {
	s.bytes.Add(-int64(e.SizeBytes))
	if !time.Now().Before(e.CreatedAt.Add(s.policy.TTL)) {
		s.expirations.Add(1)
	}
}
