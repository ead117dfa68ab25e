package contacts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/contacts", func(cr chi.Router) {
		cr.Post("/", createContactHandler(svc))
		cr.Get("/", listContactsHandler(svc))
		cr.Delete("/{contactID}", deleteContactHandler(svc))
	})
}

type createContactRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Relation    string `json:"relation"`
	IsEmergency bool   `json:"is_emergency"`
	Priority    int    `json:"priority"` // menor = se llama primero
}

// createContactHandler godoc
// @Summary Registrar contacto
// @Tags contacts
// @Accept json
// @Produce json
// @Param payload body createContactRequest true "Contacto"
// @Success 201 {object} Contact
// @Failure 400 {string} string "invalid json / invalid input"
// @Router /contacts [post]
func createContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.Create(r.Context(), CreateInput(req))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// listContactsHandler godoc
// @Summary Listar contactos
// @Description Ordenados por prioridad.
// @Tags contacts
// @Produce json
// @Success 200 {array} Contact
// @Router /contacts [get]
func listContactsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func deleteContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), chi.URLParam(r, "contactID"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
			http.Error(w, "contact not found", http.StatusNotFound)
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
