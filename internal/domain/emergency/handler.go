package emergency

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"care-monitor/internal/domain/incidents"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, o *Orchestrator) {
	r.Route("/emergency", func(er chi.Router) {
		er.Post("/activate", activateHandler(o))
		er.Post("/hold/press", holdPressHandler(o))
		er.Post("/hold/release", holdReleaseHandler(o))
		er.Post("/{incidentID}/cancel", cancelHandler(o))
		er.Post("/{incidentID}/resolve", resolveHandler(o))
	})
}

type activateRequest struct {
	Type      string `json:"type"`      // default: emergency
	Source    string `json:"source"`    // manual | voice | api
	Rehearsal bool   `json:"rehearsal"` // simulacro: no llama ni envía mensajes
}

// activateHandler godoc
// @Summary Activar emergencia
// @Description Crea un incidente y arranca la secuencia: activated (0s), calling (2s), messaging (5s), locating (10s), logged (15s), resolved (20s).
// @Tags emergency
// @Accept json
// @Produce json
// @Param payload body activateRequest false "Origen y modo simulacro"
// @Success 202 {object} incidents.Incident
// @Failure 400 {string} string "invalid json"
// @Router /emergency/activate [post]
func activateHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Source == "" {
			req.Source = incidents.SourceAPI
		}

		inc, err := o.Activate(r.Context(), Request(req))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusAccepted, inc)
	}
}

// cancelHandler godoc
// @Summary Cancelar emergencia
// @Description Detiene los pasos pendientes. Con resolve=true además resuelve el incidente.
// @Tags emergency
// @Produce json
// @Param incidentID path string true "ID del incidente"
// @Param resolve query bool false "Resolver también"
// @Success 200 {object} incidents.Incident
// @Failure 400 {string} string "invalid resolve"
// @Failure 404 {string} string "no running sequence"
// @Router /emergency/{incidentID}/cancel [post]
func cancelHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolve := false
		if raw := r.URL.Query().Get("resolve"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				http.Error(w, "invalid resolve", http.StatusBadRequest)
				return
			}
			resolve = v
		}

		id := chi.URLParam(r, "incidentID")
		inc, err := o.Cancel(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if resolve {
			if inc, err = o.Resolve(r.Context(), id); err != nil {
				writeError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, inc)
	}
}

// resolveHandler godoc
// @Summary Resolver emergencia
// @Tags emergency
// @Produce json
// @Param incidentID path string true "ID del incidente"
// @Success 200 {object} incidents.Incident
// @Failure 404 {string} string "incident not found"
// @Router /emergency/{incidentID}/resolve [post]
func resolveHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inc, err := o.Resolve(r.Context(), chi.URLParam(r, "incidentID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inc)
	}
}

type holdResponse struct {
	Armed   bool `json:"armed,omitempty"`
	Aborted bool `json:"aborted,omitempty"`
}

// holdPressHandler godoc
// @Summary Presionar botón de emergencia
// @Description Arma el disparo; si no se suelta en 2 s se activa la emergencia.
// @Tags emergency
// @Produce json
// @Success 202 {object} holdResponse
// @Failure 409 {string} string "already pressed"
// @Router /emergency/hold/press [post]
func holdPressHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !o.Hold().Press() {
			http.Error(w, "already pressed", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusAccepted, holdResponse{Armed: true})
	}
}

// holdReleaseHandler godoc
// @Summary Soltar botón de emergencia
// @Tags emergency
// @Produce json
// @Success 200 {object} holdResponse
// @Router /emergency/hold/release [post]
func holdReleaseHandler(o *Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, holdResponse{Aborted: o.Hold().Release()})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotRunning):
		http.Error(w, "no running sequence", http.StatusNotFound)
	case errors.Is(err, incidents.ErrNotFound):
		http.Error(w, "incident not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
