package activity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"care-monitor/internal/adapters/storage/memory"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Record_MostRecentFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	i := 0
	svc := NewService(memory.NewStore(0)).
		WithLimit(3).
		WithClock(func() time.Time { i++; return base.Add(time.Duration(i) * time.Minute) })

	for n := 1; n <= 5; n++ {
		require.NoError(t, svc.Record(ctx, KindDoseTaken, fmt.Sprintf("dosis %d", n)))
	}

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "dosis 5", list[0].Message)
	assert.Equal(t, "dosis 3", list[2].Message)
	assert.True(t, list[0].At.After(list[1].At))

	top, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestService_Record_TrimsOnStorageFull(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(600)
	svc := NewService(s)

	for n := 0; n < 20; n++ {
		require.NoError(t, svc.Record(ctx, KindDoseMissed, "Metformina 08:00"))
	}

	list, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
	assert.Less(t, len(list), 20)

	// Lo guardado entra en la cuota.
	raw, ok, err := s.Get(ctx, StoreKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.LessOrEqual(t, len(raw)+len(StoreKey), 600)
}

func TestListActivityHandler(t *testing.T) {
	svc := NewService(memory.NewStore(0))
	require.NoError(t, svc.Record(context.Background(), KindMedicineAdded, "Losartán"))

	r := chi.NewRouter()
	RegisterRoutes(r, svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activity?limit=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"medicine_added"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activity?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
