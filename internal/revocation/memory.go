// Package revocation tracks session identifiers that were invalidated
// before their natural expiry. Every token validation consults the set,
// so an Add must be observed by all subsequent Contains calls.
package revocation

import (
	"context"
	"sync"
	"time"
)

// MemorySet is a process-local revocation set guarded by a mutex.
// Suitable for single-instance deployments and tests; multi-instance
// deployments should use RedisSet so revocations are shared.
type MemorySet struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemorySet() *MemorySet {
	return &MemorySet{revoked: make(map[string]time.Time)}
}

// Add marks a session id as revoked. Idempotent. The ttl bounds how
// long the entry must be retained; entries past their deadline are
// pruned lazily since the token itself is expired by then.
func (s *MemorySet) Add(ctx context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, deadline := range s.revoked {
		if now.After(deadline) {
			delete(s.revoked, id)
		}
	}
	s.revoked[sessionID] = now.Add(ttl)
	return nil
}

func (s *MemorySet) Contains(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.revoked[sessionID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(deadline), nil
}
