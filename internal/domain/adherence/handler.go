package adherence

import (
	"encoding/json"
	"errors"
	"net/http"

	"care-monitor/internal/domain/medicines"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, sch *Scheduler) {
	r.Route("/doses", func(dr chi.Router) {
		dr.Get("/today", todayHandler(sch))
		dr.Get("/log", logHandler(sch))
		dr.Post("/{medicineID}/{time}/taken", markTakenHandler(sch))
	})
}

// todayHandler godoc
// @Summary Dosis de hoy
// @Description Lista cada medicina x horario con su estado (pending, taken, missed).
// @Tags doses
// @Produce json
// @Success 200 {array} DoseView
// @Router /doses/today [get]
func todayHandler(sch *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := sch.Today(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// logHandler godoc
// @Summary Registro de dosis
// @Description Registro diario completo, indexado por fecha (YYYY-MM-DD).
// @Tags doses
// @Produce json
// @Success 200 {object} DailyLog
// @Router /doses/log [get]
func logHandler(sch *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, err := sch.Log(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, log)
	}
}

// markTakenHandler godoc
// @Summary Marcar dosis tomada
// @Tags doses
// @Produce json
// @Param medicineID path string true "ID de la medicina"
// @Param time path string true "Horario HH:MM"
// @Success 200 {object} DoseEntry
// @Failure 404 {string} string "dose not found"
// @Router /doses/{medicineID}/{time}/taken [post]
func markTakenHandler(sch *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := medicines.ParseTimeOfDay(chi.URLParam(r, "time"))
		if err != nil {
			http.Error(w, "dose not found", http.StatusNotFound)
			return
		}

		entry, err := sch.MarkTaken(r.Context(), chi.URLParam(r, "medicineID"), t)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, entry)
		case errors.Is(err, ErrUnknownDose):
			http.Error(w, "dose not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
