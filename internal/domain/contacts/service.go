package contacts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"care-monitor/internal/ports/store"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("contact not found")
)

type Service struct {
	store store.Store
	mu    sync.Mutex
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

type CreateInput struct {
	Name        string
	Phone       string
	Relation    string
	IsEmergency bool
	Priority    int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Contact, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" || in.Priority < 0 {
		return Contact{}, ErrInvalidInput
	}

	c := Contact{
		ID:          uuid.NewString(),
		Name:        name,
		Phone:       phone,
		Relation:    strings.TrimSpace(in.Relation),
		IsEmergency: in.IsEmergency,
		Priority:    in.Priority,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return Contact{}, err
	}
	list = append(list, c)
	SortByPriority(list)
	if err := store.SetJSON(ctx, s.store, StoreKey, list); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// List devuelve los contactos ordenados por prioridad.
func (s *Service) List(ctx context.Context) ([]Contact, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	SortByPriority(list)
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, c := range list {
		if c.ID == id {
			list = append(list[:i], list[i+1:]...)
			return store.SetJSON(ctx, s.store, StoreKey, list)
		}
	}
	return ErrNotFound
}

// Primary devuelve el contacto a llamar en una emergencia.
func (s *Service) Primary(ctx context.Context) (Contact, bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return Contact{}, false, err
	}
	c, ok := Primary(list)
	return c, ok, nil
}

func (s *Service) load(ctx context.Context) ([]Contact, error) {
	list := []Contact{}
	if _, err := store.GetJSON(ctx, s.store, StoreKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}
