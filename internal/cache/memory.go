package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type memoryEntry struct {
	data     []byte
	storedAt time.Time
}

// MemoryStore is an in-process Store guarded by a single mutex. Entries live
// until Delete unless a TTL is configured, in which case Sweep (or Run)
// reclaims entries older than the TTL.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Handle]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL enables age-based reclamation for entries abandoned after failed uploads.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[Handle]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a copy of data under a new handle.
func (s *MemoryStore) Put(_ context.Context, data []byte) (Handle, error) {
	h := uuid.NewString()
	buf := append([]byte(nil), data...)

	s.mu.Lock()
	s.entries[h] = memoryEntry{data: buf, storedAt: s.now()}
	s.mu.Unlock()
	return h, nil
}

// Get returns a copy of the bytes stored under h.
func (s *MemoryStore) Get(_ context.Context, h Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

// Delete removes h.
func (s *MemoryStore) Delete(_ context.Context, h Handle) error {
	s.mu.Lock()
	delete(s.entries, h)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Sweep removes entries stored more than TTL before now and returns how many
// were dropped. It is a no-op when no TTL is configured.
func (s *MemoryStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for h, e := range s.entries {
		if e.storedAt.Before(cutoff) {
			delete(s.entries, h)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				log.Info().Int("removed", n).Dur("ttl", s.ttl).Msg("swept expired cache entries")
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
