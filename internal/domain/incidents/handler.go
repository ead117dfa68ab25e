package incidents

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, st *Store) {
	r.Route("/incidents", func(ir chi.Router) {
		ir.Get("/", listIncidentsHandler(st))
		ir.Get("/current", currentIncidentHandler(st))
		ir.Get("/{incidentID}", getIncidentHandler(st))

		// Anotaciones manuales del historial (notas y marca de resuelto).
		ir.Patch("/{incidentID}", patchIncidentHandler(st))
	})
}

// listIncidentsHandler godoc
// @Summary Historial de incidentes
// @Description Más reciente primero, máximo 20.
// @Tags incidents
// @Produce json
// @Success 200 {array} Incident
// @Router /incidents [get]
func listIncidentsHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// currentIncidentHandler godoc
// @Summary Incidente activo actual
// @Tags incidents
// @Produce json
// @Success 200 {object} Incident
// @Failure 404 {string} string "no active incident"
// @Router /incidents/current [get]
func currentIncidentHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inc, ok, err := st.Current(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "no active incident", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, inc)
	}
}

func getIncidentHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inc, err := st.Get(r.Context(), chi.URLParam(r, "incidentID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inc)
	}
}

type patchIncidentRequest struct {
	Notes    *string `json:"notes,omitempty"`
	Resolved *bool   `json:"resolved,omitempty"`
}

// patchIncidentHandler godoc
// @Summary Anotar incidente
// @Description Cambia notas y/o la marca de resuelto. Permitido también en incidentes ya resueltos.
// @Tags incidents
// @Accept json
// @Produce json
// @Param incidentID path string true "ID del incidente"
// @Param payload body patchIncidentRequest true "Campos a cambiar"
// @Success 200 {object} Incident
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "incident not found"
// @Router /incidents/{incidentID} [patch]
func patchIncidentHandler(st *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patchIncidentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Notes == nil && req.Resolved == nil {
			http.Error(w, "nothing to update", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "incidentID")
		var (
			inc Incident
			err error
		)
		if req.Notes != nil {
			if inc, err = st.SetNotes(r.Context(), id, *req.Notes); err != nil {
				writeStoreError(w, err)
				return
			}
		}
		if req.Resolved != nil {
			if inc, err = st.SetResolvedFlag(r.Context(), id, *req.Resolved); err != nil {
				writeStoreError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, inc)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "incident not found", http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
