package memory

import (
	"context"
	"sync"
	"time"

	"tourhub/internal/domain/verification"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
}

// CodeStore keeps verification codes in process memory. Suitable for a single
// instance; use the Redis store when running more than one.
type CodeStore struct {
	mu    sync.Mutex
	items map[string]codeEntry
	now   func() time.Time
}

func NewCodeStore(now func() time.Time) *CodeStore {
	if now == nil {
		now = time.Now
	}
	return &CodeStore{items: make(map[string]codeEntry), now: now}
}

func (s *CodeStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = codeEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *CodeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return "", verification.ErrCodeNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.items, key)
		return "", verification.ErrCodeNotFound
	}
	return entry.code, nil
}

func (s *CodeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

var _ verification.CodeStore = (*CodeStore)(nil)
