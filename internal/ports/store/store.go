package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrStorageFull lo devuelve Set cuando el medio subyacente no admite más datos.
	ErrStorageFull = errors.New("storage full")
)

// Handler recibe el valor nuevo (JSON) cada vez que alguien hace Set de la key.
type Handler func(value []byte)

// Store es un key-value de valores JSON. Los cambios son visibles en todo el
// proceso y se difunden a los suscriptores de la misma key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Subscribe(key string, h Handler) (unsubscribe func())
}

// GetJSON decodifica la key en out. Devuelve false si la key no existe;
// en ese caso out queda intacto (el "default" lo pone el caller).
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// SetCapped guarda una colección append-only ordenada de más reciente a más
// antigua. Si el medio está lleno recorta las entradas más antiguas y reintenta
// hasta que entra (o hasta quedar vacía). Devuelve la colección efectivamente
// guardada.
func SetCapped[T any](ctx context.Context, s Store, key string, items []T, limit int) ([]T, error) {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for {
		err := SetJSON(ctx, s, key, items)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, ErrStorageFull) || len(items) == 0 {
			return items, err
		}
		items = items[:len(items)-1]
	}
}
