package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"care-monitor/internal/adapters/storage/broadcast"
	"care-monitor/internal/ports/store"
)

var (
	ErrEmptyKey = errors.New("key required")
)

// kvStore es el Store en memoria. quota (bytes) <= 0 => sin límite.
type kvStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	used  int
	quota int

	hub *broadcast.Hub
}

func NewStore(quotaBytes int) store.Store {
	return &kvStore{
		data:  make(map[string][]byte),
		quota: quotaBytes,
		hub:   broadcast.NewHub(),
	}
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	size := len(key) + len(value)
	prev, had := s.data[key]
	used := s.used
	if had {
		used -= len(key) + len(prev)
	}
	if s.quota > 0 && used+size > s.quota {
		s.mu.Unlock()
		return store.ErrStorageFull
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	s.used = used + size
	s.mu.Unlock()

	// Publicamos fuera del lock: los handlers pueden volver a leer el store.
	s.hub.Publish(key, cp)
	return nil
}

func (s *kvStore) Subscribe(key string, h store.Handler) func() {
	return s.hub.Subscribe(key, h)
}
