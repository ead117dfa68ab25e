package incidents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"care-monitor/internal/ports/store"
)

const (
	ListKey    = "incidents:list"
	CurrentKey = "incidents:current"

	DefaultLimit = 20
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("incident not found")
)

// Store persiste los incidentes (más reciente primero, máximo DefaultLimit) y
// mantiene un id explícito de incidente actual.
type Store struct {
	kv    store.Store
	now   func() time.Time
	limit int

	mu sync.Mutex
}

func NewStore(kv store.Store, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, now: now, limit: DefaultLimit}
}

func (s *Store) WithLimit(n int) *Store {
	if n > 0 {
		s.limit = n
	}
	return s
}

// Log hace upsert por id. Un incidente nuevo va al principio; uno existente
// conserva su posición. Un incidente activo pasa a ser el actual salvo que el
// actual haya empezado después.
func (s *Store) Log(ctx context.Context, inc Incident) error {
	if strings.TrimSpace(inc.ID) == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	list = upsert(list, inc)
	return s.save(ctx, list, inc)
}

// Update relee el incidente, aplica fn y lo persiste.
func (s *Store) Update(ctx context.Context, id string, fn func(Incident) Incident) (Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return Incident{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return Incident{}, ErrNotFound
	}

	inc := fn(list[i])
	inc.ID = id
	list[i] = inc
	if err := s.save(ctx, list, inc); err != nil {
		return Incident{}, err
	}
	return inc, nil
}

// Resolve es idempotente: ResolvedAt queda con la primera resolución.
func (s *Store) Resolve(ctx context.Context, id string) (Incident, error) {
	return s.Update(ctx, id, func(inc Incident) Incident {
		return inc.MarkResolved(s.now())
	})
}

func (s *Store) SetNotes(ctx context.Context, id, notes string) (Incident, error) {
	return s.Update(ctx, id, func(inc Incident) Incident {
		inc.Notes = strings.TrimSpace(notes)
		return inc
	})
}

// SetResolvedFlag es la anotación manual del historial. Reabrir no borra ResolvedAt.
func (s *Store) SetResolvedFlag(ctx context.Context, id string, resolved bool) (Incident, error) {
	return s.Update(ctx, id, func(inc Incident) Incident {
		if resolved {
			return inc.MarkResolved(s.now())
		}
		inc.Status = StatusActive
		return inc
	})
}

func (s *Store) List(ctx context.Context) ([]Incident, error) {
	return s.load(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (Incident, error) {
	list, err := s.load(ctx)
	if err != nil {
		return Incident{}, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], nil
	}
	return Incident{}, ErrNotFound
}

// Current devuelve el incidente apuntado por el id actual, si sigue activo.
func (s *Store) Current(ctx context.Context) (Incident, bool, error) {
	id, err := s.currentID(ctx)
	if err != nil || id == "" {
		return Incident{}, false, err
	}
	inc, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Incident{}, false, nil
	}
	if err != nil {
		return Incident{}, false, err
	}
	return inc, inc.Active(), nil
}

// Subscribe notifica la lista completa cada vez que cambia.
func (s *Store) Subscribe(fn func([]Incident)) func() {
	return s.kv.Subscribe(ListKey, func(raw []byte) {
		var list []Incident
		if err := json.Unmarshal(raw, &list); err != nil {
			return
		}
		fn(list)
	})
}

func (s *Store) save(ctx context.Context, list []Incident, changed Incident) error {
	cur, err := s.currentID(ctx)
	if err != nil {
		return err
	}

	kept, err := store.SetCapped(ctx, s.kv, ListKey, list, s.limit)
	if err != nil {
		return fmt.Errorf("incidents: save list: %w", err)
	}

	next := nextCurrent(kept, cur, changed)
	if next == cur {
		return nil
	}
	if err := store.SetJSON(ctx, s.kv, CurrentKey, next); err != nil {
		return fmt.Errorf("incidents: save current: %w", err)
	}
	return nil
}

// nextCurrent: el cambiado pasa a actual si está activo y no es más viejo que
// el actual. Si el actual deja de estar activo (o salió de la lista) se elige
// el activo más reciente.
func nextCurrent(list []Incident, cur string, changed Incident) string {
	ci := indexOf(list, cur)

	if changed.Active() && indexOf(list, changed.ID) >= 0 {
		if ci < 0 || !list[ci].Active() || !changed.StartedAt.Before(list[ci].StartedAt) {
			return changed.ID
		}
	}

	if ci >= 0 && list[ci].Active() {
		return cur
	}
	for _, inc := range list {
		if inc.Active() {
			return inc.ID
		}
	}
	return ""
}

func (s *Store) currentID(ctx context.Context) (string, error) {
	var id string
	if _, err := store.GetJSON(ctx, s.kv, CurrentKey, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) load(ctx context.Context) ([]Incident, error) {
	list := []Incident{}
	if _, err := store.GetJSON(ctx, s.kv, ListKey, &list); err != nil {
		return nil, fmt.Errorf("incidents: load list: %w", err)
	}
	return list, nil
}

func upsert(list []Incident, inc Incident) []Incident {
	if i := indexOf(list, inc.ID); i >= 0 {
		list[i] = inc
		return list
	}
	return append([]Incident{inc}, list...)
}

func indexOf(list []Incident, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
