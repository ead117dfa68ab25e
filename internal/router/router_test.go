package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"care-monitor/internal/adapters/gateways/console"
	"care-monitor/internal/adapters/storage/memory"
	"care-monitor/internal/platform/logger"
	"care-monitor/internal/router"

	"github.com/benbjohnson/clock"
)

func newServer(t *testing.T) (*httptest.Server, *router.App) {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2025, 3, 1, 8, 10, 0, 0, time.UTC))

	app := router.NewRouter(router.Options{
		Store:    memory.NewStore(0),
		Gateways: console.New(logger.Nop()),
		Clock:    clk,
	})
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		app.Orchestrator.Shutdown()
		ts.Close()
	})
	return ts, app
}

func TestHTTP_EndToEnd_Medicines(t *testing.T) {
	ts, _ := newServer(t)

	// 1) Registrar medicina
	st, body := doReq(t, ts.URL, "POST", "/medicines", map[string]any{
		"name":            "Metformina",
		"instructions":    "Con comida",
		"scheduled_times": []string{"20:00", "08:00"},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medicine, got %d body=%s", st, string(body))
	}
	var med struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &med)
	if med.ID == "" {
		t.Fatalf("create medicine: missing id body=%s", string(body))
	}

	// 2) Horarios repetidos => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/medicines", map[string]any{
			"name":            "Otra",
			"scheduled_times": []string{"08:00", "08:00"},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for duplicate times, got %d", st)
		}
	}

	// 3) Vista de hoy: dos dosis pendientes
	{
		st, body := doReq(t, ts.URL, "GET", "/doses/today", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 doses today, got %d", st)
		}
		var doses []struct {
			Time   string `json:"time"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &doses)
		if len(doses) != 2 || doses[0].Status != "pending" {
			t.Fatalf("unexpected doses body=%s", string(body))
		}
	}

	// 4) Marcar tomada; horario inexistente => 404
	{
		st, body := doReq(t, ts.URL, "POST", "/doses/"+med.ID+"/08:00/taken", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"status":"taken"`) {
			t.Fatalf("expected 200 taken, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "POST", "/doses/"+med.ID+"/09:00/taken", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 unknown dose, got %d", st)
		}
	}

	// 5) Borrar medicina limpia su registro
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/medicines/"+med.ID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete medicine, got %d", st)
		}
		_, body := doReq(t, ts.URL, "GET", "/doses/log", nil)
		if strings.Contains(string(body), med.ID) {
			t.Fatalf("dose log still references deleted medicine: %s", string(body))
		}
	}

	// 6) Historial de actividad
	{
		_, body := doReq(t, ts.URL, "GET", "/activity", nil)
		for _, kind := range []string{"medicine_added", "dose_taken", "medicine_removed"} {
			if !strings.Contains(string(body), kind) {
				t.Fatalf("activity missing %s: %s", kind, string(body))
			}
		}
	}
}

func TestHTTP_EndToEnd_EmergencyCancelAndResolve(t *testing.T) {
	ts, app := newServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/contacts", map[string]any{
		"name": "Hija", "phone": "+34600000001", "is_emergency": true,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create contact, got %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/emergency/activate", map[string]any{"rehearsal": true})
	if st != http.StatusAccepted {
		t.Fatalf("expected 202 activate, got %d body=%s", st, string(body))
	}
	var inc struct {
		ID        string `json:"id"`
		Rehearsal bool   `json:"rehearsal"`
	}
	_ = json.Unmarshal(body, &inc)
	if inc.ID == "" || !inc.Rehearsal {
		t.Fatalf("activate: unexpected body=%s", string(body))
	}
	if !app.Orchestrator.Running(inc.ID) {
		t.Fatalf("expected sequence running")
	}

	// Incidente actual
	{
		st, body := doReq(t, ts.URL, "GET", "/incidents/current", nil)
		if st != http.StatusOK || !strings.Contains(string(body), inc.ID) {
			t.Fatalf("expected current incident, got %d body=%s", st, string(body))
		}
	}

	// Cancelar y resolver
	{
		st, body := doReq(t, ts.URL, "POST", "/emergency/"+inc.ID+"/cancel?resolve=true", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"status":"resolved"`) {
			t.Fatalf("expected 200 resolved, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/incidents/current", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 no current incident, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/emergency/"+inc.ID+"/cancel", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 cancel twice, got %d", st)
		}
	}

	// Notas después de resolver
	{
		st, body := doReq(t, ts.URL, "PATCH", "/incidents/"+inc.ID, map[string]any{"notes": "simulacro mensual"})
		if st != http.StatusOK || !strings.Contains(string(body), "simulacro mensual") {
			t.Fatalf("expected 200 notes, got %d body=%s", st, string(body))
		}
	}

	// Presionar y soltar antes de tiempo
	{
		st, _ := doReq(t, ts.URL, "POST", "/emergency/hold/press", nil)
		if st != http.StatusAccepted {
			t.Fatalf("expected 202 hold press, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/emergency/hold/release", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"aborted":true`) {
			t.Fatalf("expected aborted release, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_PlatformEndpoints(t *testing.T) {
	ts, _ := newServer(t)

	for path, want := range map[string]string{
		"/health":            "ok",
		"/metrics":           "care_monitor_",
		"/swagger/doc.json":  "Care Monitor API",
		"/incidents":         "[]",
		"/contacts":          "[]",
		"/activity?limit=10": "[]",
	} {
		st, body := doReq(t, ts.URL, "GET", path, nil)
		if st != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, st)
		}
		if !strings.Contains(string(body), want) {
			t.Fatalf("GET %s: expected %q in body=%s", path, want, string(body))
		}
	}
}

func doReq(t *testing.T, baseURL, method, path string, payload any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}
