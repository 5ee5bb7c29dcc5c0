package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process session store. It backs
// deployments without Redis and the test suite. Records expire lazily.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	ttl     time.Duration
	now     func() time.Time
}

type memoryRecord struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store. ttl <= 0 means records
// never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mr, ok := s.records[sessionID]
	if !ok {
		return nil, nil
	}

	if !mr.expiresAt.IsZero() && s.now().After(mr.expiresAt) {
		delete(s.records, sessionID)
		return nil, nil
	}

	rec := mr.rec
	return &rec, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mr := memoryRecord{rec: rec}
	if s.ttl > 0 {
		mr.expiresAt = s.now().Add(s.ttl)
	}
	s.records[sessionID] = mr
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}
