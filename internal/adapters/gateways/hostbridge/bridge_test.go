package hostbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"care-monitor/internal/ports/gateways"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBridge(t *testing.T, r http.Handler) *Bridge {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	b, err := New(srv.URL, time.Second)
	require.NoError(t, err)
	return b
}

func TestBridge_ForwardsActions(t *testing.T) {
	var calls []string
	r := chi.NewRouter()
	r.Post("/v1/calls", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		calls = append(calls, "call:"+in["phone"])
		w.WriteHeader(http.StatusAccepted)
	})
	r.Post("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		calls = append(calls, "sms:"+in["phone"])
		w.WriteHeader(http.StatusAccepted)
	})
	r.Post("/v1/notifications/permission", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"permission": "granted"})
	})
	r.Get("/v1/location", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3000", r.URL.Query().Get("timeout_ms"))
		_ = json.NewEncoder(w).Encode(gateways.Location{Lat: -12.05, Lng: -77.04, Address: "Av. Siempre Viva 742"})
	})

	b := newBridge(t, r)
	g := b.Gateways()
	ctx := context.Background()

	require.NoError(t, g.Telephony.Call(ctx, "+51999000111"))
	require.NoError(t, g.Messaging.Send(ctx, "+51999000222", "help"))
	assert.Equal(t, []string{"call:+51999000111", "sms:+51999000222"}, calls)

	p, err := g.Notification.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, gateways.PermissionGranted, p)

	loc, err := g.Location.Current(ctx, 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Av. Siempre Viva 742", loc.Address)
}

func TestBridge_UnsupportedMapsToUnavailable(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/v1/speech", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "speech not supported", http.StatusNotImplemented)
	})
	r.Post("/v1/alerts/tone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	b := newBridge(t, r)
	ctx := context.Background()

	err := b.Speak(ctx, "hola", "es-PE")
	assert.ErrorIs(t, err, gateways.ErrUnavailable)

	// Rutas inexistentes (404) también cuentan como no soportado.
	assert.ErrorIs(t, b.Vibrate(ctx), gateways.ErrUnavailable)

	err = b.PlayTone(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, gateways.ErrUnavailable)
}
