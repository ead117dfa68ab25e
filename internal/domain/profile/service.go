package profile

import (
	"context"
	"strings"

	"care-monitor/internal/ports/store"
)

const StoreKey = "profile"

// Profile son los datos de la persona cuidada que van en el mensaje de emergencia.
type Profile struct {
	ElderName string `json:"elder_name"`
	Address   string `json:"address,omitempty"`
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Get devuelve el perfil guardado o uno vacío.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	var p Profile
	if _, err := store.GetJSON(ctx, s.store, StoreKey, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Put(ctx context.Context, p Profile) (Profile, error) {
	p.ElderName = strings.TrimSpace(p.ElderName)
	p.Address = strings.TrimSpace(p.Address)
	if err := store.SetJSON(ctx, s.store, StoreKey, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
