package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"care-monitor/internal/ports/store"

	goredis "github.com/redis/go-redis/v9"
)

var (
	ErrEmptyKey = errors.New("key required")
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// KVStore implementa store.Store sobre Redis. Cada Set publica el valor en
// el canal de la key, así los suscriptores de otros procesos también se enteran.
type KVStore struct {
	client *goredis.Client
	prefix string

	mu   sync.Mutex
	subs map[*goredis.PubSub]struct{}
}

// Open conecta y verifica con PING.
func Open(ctx context.Context, cfg Config) (*KVStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return NewKVStore(client, cfg.Prefix), nil
}

func NewKVStore(client *goredis.Client, prefix string) *KVStore {
	return &KVStore{
		client: client,
		prefix: prefix,
		subs:   make(map[*goredis.PubSub]struct{}),
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrEmptyKey
	}
	raw, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	_, err := s.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.dataKey(key), value, 0)
		p.Publish(ctx, s.channel(key), value)
		return nil
	})
	if err != nil {
		if isOOM(err) {
			return store.ErrStorageFull
		}
		return err
	}
	return nil
}

// Subscribe se registra en el canal de la key y espera la confirmación antes
// de volver, para no perder el primer Set posterior.
func (s *KVStore) Subscribe(key string, h store.Handler) func() {
	if h == nil {
		return func() {}
	}

	ctx := context.Background()
	ps := s.client.Subscribe(ctx, s.channel(key))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return func() {}
	}

	s.mu.Lock()
	s.subs[ps] = struct{}{}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			h([]byte(msg.Payload))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ps)
			s.mu.Unlock()
			_ = ps.Close()
			<-done
		})
	}
}

// Close cierra las suscripciones abiertas y el cliente.
func (s *KVStore) Close() error {
	s.mu.Lock()
	for ps := range s.subs {
		_ = ps.Close()
	}
	s.subs = make(map[*goredis.PubSub]struct{})
	s.mu.Unlock()
	return s.client.Close()
}

func (s *KVStore) dataKey(key string) string { return s.prefix + key }
func (s *KVStore) channel(key string) string { return s.prefix + "chan:" + key }

func isOOM(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM ")
}
