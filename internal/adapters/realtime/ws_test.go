package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"care-monitor/internal/adapters/storage/memory"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_StreamsCurrentValueAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	require.NoError(t, s.Set(ctx, "incidents:list", []byte(`[]`)))

	r := chi.NewRouter()
	NewHandler(s, nil, "incidents:list").RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/incidents:list"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "incidents:list", f.Key)
	assert.JSONEq(t, `[]`, string(f.Value))

	// El primer frame llega después de suscribirse: el Set ya se difunde.
	require.NoError(t, s.Set(ctx, "incidents:list", []byte(`[{"id":"a"}]`)))

	require.NoError(t, conn.ReadJSON(&f))
	assert.JSONEq(t, `[{"id":"a"}]`, string(f.Value))
}

func TestHandler_UnknownKey(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(memory.NewStore(0), nil, "incidents:list").RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/secret"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
