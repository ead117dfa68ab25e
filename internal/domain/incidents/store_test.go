package incidents

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"care-monitor/internal/adapters/storage/memory"
	"care-monitor/internal/ports/gateways"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func incidentAt(id string, started time.Time) Incident {
	return Incident{
		ID:        id,
		Type:      TypeEmergency,
		Source:    SourceManual,
		Status:    StatusActive,
		StartedAt: started,
		Timeline:  []TimelineEntry{{0, LabelDetected}},
	}
}

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore(0)
	f := NewFactory(kv, func() time.Time { return t0 })

	inc := f.Create(ctx, Reason{Source: SourceVoice})
	assert.NotEmpty(t, inc.ID)
	assert.Equal(t, StatusActive, inc.Status)
	assert.Equal(t, TypeEmergency, inc.Type)
	assert.Equal(t, SourceVoice, inc.Source)
	assert.Equal(t, t0, inc.StartedAt)
	assert.Equal(t, []TimelineEntry{{0, LabelDetected}}, inc.Timeline)
	assert.Nil(t, inc.Location)

	require.NoError(t, SaveLastLocation(ctx, kv, gateways.Location{Lat: 40.4, Lng: -3.7}))
	other := f.Create(ctx, Reason{})
	assert.NotEqual(t, inc.ID, other.ID)
	require.NotNil(t, other.Location)
	assert.Equal(t, 40.4, other.Location.Lat)
}

func TestStore_Log_UpsertOrderAndCap(t *testing.T) {
	ctx := context.Background()
	st := NewStore(memory.NewStore(0), func() time.Time { return t0 })

	for i := 0; i < 25; i++ {
		inc := incidentAt(fmt.Sprintf("inc-%02d", i), t0.Add(time.Duration(i)*time.Minute))
		inc.Status = StatusResolved
		require.NoError(t, st.Log(ctx, inc))
	}

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, DefaultLimit)
	assert.Equal(t, "inc-24", list[0].ID)
	assert.Equal(t, "inc-05", list[DefaultLimit-1].ID)

	// Upsert conserva la posición.
	upd := list[3]
	upd.Notes = "revisado"
	require.NoError(t, st.Log(ctx, upd))
	list, err = st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, DefaultLimit)
	assert.Equal(t, "revisado", list[3].Notes)
}

func TestStore_ResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := t0
	st := NewStore(memory.NewStore(0), func() time.Time { return now })

	require.NoError(t, st.Log(ctx, incidentAt("a", t0)))

	now = t0.Add(20 * time.Second)
	first, err := st.Resolve(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, first.ResolvedAt)

	now = t0.Add(time.Minute)
	second, err := st.Resolve(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, *first.ResolvedAt, *second.ResolvedAt)
	assert.Equal(t, StatusResolved, second.Status)

	_, err = st.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Annotations(t *testing.T) {
	ctx := context.Background()
	st := NewStore(memory.NewStore(0), func() time.Time { return t0 })
	require.NoError(t, st.Log(ctx, incidentAt("a", t0)))
	_, err := st.Resolve(ctx, "a")
	require.NoError(t, err)

	inc, err := st.SetNotes(ctx, "a", " falsa alarma ")
	require.NoError(t, err)
	assert.Equal(t, "falsa alarma", inc.Notes)

	inc, err = st.SetResolvedFlag(ctx, "a", false)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, inc.Status)
	assert.NotNil(t, inc.ResolvedAt)
}

func TestStore_CurrentFollowsNewestActive(t *testing.T) {
	ctx := context.Background()
	st := NewStore(memory.NewStore(0), func() time.Time { return t0 })

	_, ok, err := st.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	older := incidentAt("older", t0)
	newer := incidentAt("newer", t0.Add(5*time.Second))
	require.NoError(t, st.Log(ctx, older))
	require.NoError(t, st.Log(ctx, newer))

	// Un paso tardío del incidente viejo no le quita el lugar al nuevo.
	require.NoError(t, st.Log(ctx, older.Append("calling", t0.Add(6*time.Second))))

	cur, ok, err := st.Current(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "newer", cur.ID)

	_, err = st.Resolve(ctx, "newer")
	require.NoError(t, err)
	cur, ok, err = st.Current(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "older", cur.ID)

	_, err = st.Resolve(ctx, "older")
	require.NoError(t, err)
	_, ok, err = st.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	st := NewStore(memory.NewStore(0), func() time.Time { return t0 })

	var (
		mu   sync.Mutex
		seen []int
	)
	unsub := st.Subscribe(func(list []Incident) {
		mu.Lock()
		seen = append(seen, len(list))
		mu.Unlock()
	})

	require.NoError(t, st.Log(ctx, incidentAt("a", t0)))
	require.NoError(t, st.Log(ctx, incidentAt("b", t0)))
	unsub()
	require.NoError(t, st.Log(ctx, incidentAt("c", t0)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, seen)
}

func TestIncidentHandlers(t *testing.T) {
	ctx := context.Background()
	st := NewStore(memory.NewStore(0), func() time.Time { return t0 })
	require.NoError(t, st.Log(ctx, incidentAt("a", t0)))

	r := chi.NewRouter()
	RegisterRoutes(r, st)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents/current", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"a"`)

	rec = httptest.NewRecorder()
	body := `{"notes":"llamó la vecina","resolved":true}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/incidents/a", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"resolved"`)
	assert.Contains(t, rec.Body.String(), `"notes":"llamó la vecina"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/incidents/zzz", strings.NewReader(`{"notes":"x"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
