package medicines

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medicines", func(mr chi.Router) {
		mr.Post("/", createMedicineHandler(svc))
		mr.Get("/", listMedicinesHandler(svc))
		mr.Get("/{medicineID}", getMedicineHandler(svc))

		// Borra en cascada las dosis registradas de todos los días.
		mr.Delete("/{medicineID}", deleteMedicineHandler(svc))
	})
}

// createMedicineRequest es el cuerpo para registrar una medicina.
type createMedicineRequest struct {
	Name           string   `json:"name"`
	Instructions   string   `json:"instructions"`
	ScheduledTimes []string `json:"scheduled_times"` // HH:MM, únicas
	VoiceLocale    string   `json:"voice_locale"`    // opcional, ej. es-PE
}

type medicineResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Instructions   string      `json:"instructions"`
	ScheduledTimes []TimeOfDay `json:"scheduled_times"`
	VoiceLocale    string      `json:"voice_locale"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// createMedicineHandler godoc
// @Summary Registrar medicina
// @Description Crea una medicina con sus horarios diarios. Los horarios deben ser únicos (HH:MM).
// @Tags medicines
// @Accept json
// @Produce json
// @Param payload body createMedicineRequest true "Datos de la medicina"
// @Success 201 {object} medicineResponse
// @Failure 400 {string} string "invalid json / horarios inválidos"
// @Router /medicines [post]
func createMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMedicineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			Name:           req.Name,
			Instructions:   req.Instructions,
			ScheduledTimes: req.ScheduledTimes,
			VoiceLocale:    req.VoiceLocale,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicineResponse(m))
	}
}

// listMedicinesHandler godoc
// @Summary Listar medicinas
// @Tags medicines
// @Produce json
// @Success 200 {array} medicineResponse
// @Router /medicines [get]
func listMedicinesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]medicineResponse, 0, len(list))
		for _, m := range list {
			out = append(out, toMedicineResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medicineID"))
		if err != nil {
			http.Error(w, "medicine not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toMedicineResponse(m))
	}
}

// deleteMedicineHandler godoc
// @Summary Borrar medicina
// @Description Borra la medicina y todas sus dosis registradas en todos los días.
// @Tags medicines
// @Param medicineID path string true "ID de la medicina"
// @Success 204
// @Failure 404 {string} string "medicine not found"
// @Router /medicines/{medicineID} [delete]
func deleteMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), chi.URLParam(r, "medicineID"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
			http.Error(w, "medicine not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func toMedicineResponse(m Medicine) medicineResponse {
	return medicineResponse{
		ID:             m.ID,
		Name:           m.Name,
		Instructions:   m.Instructions,
		ScheduledTimes: m.ScheduledTimes,
		VoiceLocale:    m.VoiceLocale,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
