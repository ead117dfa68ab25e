package medicines

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateTime = errors.New("scheduled times must be unique")
)

// DeleteHook se ejecuta después de borrar una medicina (p.ej. limpiar el
// registro de dosis de todos los días).
type DeleteHook func(ctx context.Context, medicineID string) error

// CreateHook se ejecuta después de registrar una medicina. Es best-effort.
type CreateHook func(ctx context.Context, m Medicine)

type Service struct {
	repo Repository
	now  func() time.Time

	mu      sync.RWMutex
	hooks   []DeleteHook
	created []CreateHook
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock reemplaza la fuente de "now" (tests y reloj inyectado).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) OnDelete(h DeleteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

func (s *Service) OnCreate(h CreateHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, h)
}

type CreateInput struct {
	Name           string
	Instructions   string
	ScheduledTimes []string
	VoiceLocale    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medicine, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Medicine{}, ErrInvalidInput
	}
	if len(in.ScheduledTimes) == 0 {
		return Medicine{}, ErrInvalidInput
	}

	times := make([]TimeOfDay, 0, len(in.ScheduledTimes))
	seen := map[TimeOfDay]bool{}
	for _, raw := range in.ScheduledTimes {
		t, err := ParseTimeOfDay(raw)
		if err != nil {
			return Medicine{}, err
		}
		if seen[t] {
			return Medicine{}, ErrDuplicateTime
		}
		seen[t] = true
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	locale := strings.TrimSpace(in.VoiceLocale)
	if locale == "" {
		locale = "es-ES"
	}

	now := s.now()
	m := Medicine{
		ID:             uuid.NewString(),
		Name:           name,
		Instructions:   strings.TrimSpace(in.Instructions),
		ScheduledTimes: times,
		VoiceLocale:    locale,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medicine{}, err
	}

	s.mu.RLock()
	hooks := append([]CreateHook(nil), s.created...)
	s.mu.RUnlock()
	for _, h := range hooks {
		h(ctx, m)
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medicine{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Medicine, error) {
	return s.repo.List(ctx)
}

// Delete borra la medicina y luego corre los hooks en cascada.
// Un hook que falla no revierte el borrado; se devuelve el primer error.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.RLock()
	hooks := append([]DeleteHook(nil), s.hooks...)
	s.mu.RUnlock()

	var first error
	for _, h := range hooks {
		if err := h(ctx, id); err != nil && first == nil {
			first = err
		}
	}
	return first
}
