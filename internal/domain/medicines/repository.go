package medicines

import (
	"context"
	"errors"

	"care-monitor/internal/ports/store"
)

const StoreKey = "medicines"

var ErrNotFound = errors.New("medicine not found")

type Repository interface {
	Create(ctx context.Context, m Medicine) error
	GetByID(ctx context.Context, id string) (Medicine, error)
	List(ctx context.Context) ([]Medicine, error)
	Delete(ctx context.Context, id string) error
}

// storeRepo guarda el catálogo completo bajo una sola key del Store.
// Cada mutación relee antes de escribir (last-write-wins del Store).
type storeRepo struct {
	s store.Store
}

func NewStoreRepository(s store.Store) Repository {
	return &storeRepo{s: s}
}

func (r *storeRepo) load(ctx context.Context) ([]Medicine, error) {
	out := []Medicine{}
	if _, err := store.GetJSON(ctx, r.s, StoreKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storeRepo) Create(ctx context.Context, m Medicine) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, e := range all {
		if e.ID == m.ID {
			return errors.New("medicine already exists")
		}
	}
	all = append(all, m)
	return store.SetJSON(ctx, r.s, StoreKey, all)
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (Medicine, error) {
	all, err := r.load(ctx)
	if err != nil {
		return Medicine{}, err
	}
	for _, m := range all {
		if m.ID == id {
			return m, nil
		}
	}
	return Medicine{}, ErrNotFound
}

func (r *storeRepo) List(ctx context.Context) ([]Medicine, error) {
	return r.load(ctx)
}

func (r *storeRepo) Delete(ctx context.Context, id string) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	out := make([]Medicine, 0, len(all))
	found := false
	for _, m := range all {
		if m.ID == id {
			found = true
			continue
		}
		out = append(out, m)
	}
	if !found {
		return ErrNotFound
	}
	return store.SetJSON(ctx, r.s, StoreKey, out)
}
