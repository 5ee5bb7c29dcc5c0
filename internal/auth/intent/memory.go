package intent

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process intent store with TTL eviction.
// Expired intents are dropped lazily on Consume and swept periodically so an
// abandoned login does not pin memory for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	intents map[string]Intent

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewMemoryStore creates an in-memory intent store. sweepEvery <= 0 disables
// the background sweep (lazy expiry still applies).
func NewMemoryStore(sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		intents: make(map[string]Intent),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, it Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[it.State] = it
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, state string) (Intent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.intents[state]
	if !ok {
		return Intent{}, false, nil
	}

	delete(s.intents, state)

	if it.Expired(s.now()) {
		return Intent{}, false, nil
	}

	return it, true, nil
}

// Close stops the background sweep. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for state, it := range s.intents {
		if it.Expired(now) {
			delete(s.intents, state)
		}
	}
}
