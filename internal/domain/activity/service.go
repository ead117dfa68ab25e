package activity

import (
	"context"
	"strings"
	"sync"
	"time"

	"care-monitor/internal/ports/store"

	"github.com/google/uuid"
)

const (
	StoreKey = "activity:history"

	// DefaultLimit es el máximo de entradas retenidas (las más antiguas se descartan).
	DefaultLimit = 100
)

type Kind string

const (
	KindDoseTaken          Kind = "dose_taken"
	KindDoseMissed         Kind = "dose_missed"
	KindMedicineAdded      Kind = "medicine_added"
	KindMedicineRemoved    Kind = "medicine_removed"
	KindEmergencyTriggered Kind = "emergency_triggered"
	KindEmergencyCancelled Kind = "emergency_cancelled"
	KindEmergencyResolved  Kind = "emergency_resolved"
)

type Entry struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Recorder es lo que necesitan los motores para dejar rastro en el historial.
type Recorder interface {
	Record(ctx context.Context, kind Kind, message string) error
}

type Service struct {
	store store.Store
	now   func() time.Time
	limit int

	mu sync.Mutex
}

func NewService(s store.Store) *Service {
	return &Service{
		store: s,
		now:   time.Now,
		limit: DefaultLimit,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithLimit(n int) *Service {
	if n > 0 {
		s.limit = n
	}
	return s
}

// Record antepone una entrada (más reciente primero). Ante ErrStorageFull se
// recortan las más antiguas.
func (s *Service) Record(ctx context.Context, kind Kind, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []Entry
	if _, err := store.GetJSON(ctx, s.store, StoreKey, &list); err != nil {
		return err
	}

	e := Entry{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: strings.TrimSpace(message),
		At:      s.now(),
	}
	list = append([]Entry{e}, list...)

	_, err := store.SetCapped(ctx, s.store, StoreKey, list, s.limit)
	return err
}

// List devuelve hasta limit entradas (limit <= 0 => todas).
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	var list []Entry
	if _, err := store.GetJSON(ctx, s.store, StoreKey, &list); err != nil {
		return nil, err
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	if list == nil {
		list = []Entry{}
	}
	return list, nil
}

var _ Recorder = (*Service)(nil)
