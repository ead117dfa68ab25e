package broadcast

import (
	"sync"

	"care-monitor/internal/ports/store"
)

// Hub reparte valores a los suscriptores de cada key dentro del proceso.
// Los handlers se invocan fuera del lock, en orden de suscripción.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]store.Handler
	order  map[string][]int
}

func NewHub() *Hub {
	return &Hub{
		subs:  make(map[string]map[int]store.Handler),
		order: make(map[string][]int),
	}
}

func (h *Hub) Subscribe(key string, fn store.Handler) func() {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[key] == nil {
		h.subs[key] = make(map[int]store.Handler)
	}
	h.subs[key][id] = fn
	h.order[key] = append(h.order[key], id)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[key], id)
			ids := h.order[key]
			for i, v := range ids {
				if v == id {
					h.order[key] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
				delete(h.order, key)
			}
		})
	}
}

func (h *Hub) Publish(key string, value []byte) {
	h.mu.RLock()
	ids := h.order[key]
	handlers := make([]store.Handler, 0, len(ids))
	for _, id := range ids {
		if fn, ok := h.subs[key][id]; ok {
			handlers = append(handlers, fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		cp := make([]byte, len(value))
		copy(cp, value)
		fn(cp)
	}
}

// Count devuelve cuántos suscriptores tiene la key.
func (h *Hub) Count(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
