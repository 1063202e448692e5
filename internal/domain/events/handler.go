package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"psyjaciele/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes se monta dentro del subrouter /incidents.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/{id}/activity", listActivityHandler(svc))
}

// eventResponse representa una entrada del historial de un incidente.
type eventResponse struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type" enums:"incident.created,incident.helpful_marked,incident.status_changed,incident.deleted,incident.image_attached"`
	IncidentID   string    `json:"incident_id"`
	ActorID      string    `json:"actor_id,omitempty"`
	ActorRole    string    `json:"actor_role"`
	OccurredAt   time.Time `json:"occurred_at"`
	Status       string    `json:"status,omitempty"`
	HelpfulCount int       `json:"helpful_count,omitempty"`
	ImageRef     string    `json:"image_ref,omitempty"`
}

// listActivityHandler godoc
// @Summary Historial de un incidente
// @Description Devuelve los eventos registrados para el incidente, más viejo primero. Solo admin. Autenticación: `X-Debug-User-ID` + `X-Debug-Role` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags activity
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del incidente"
// @Param types query string false "Lista CSV de tipos (ej: incident.created,incident.status_changed)"
// @Param limit query int false "Máximo de eventos (1-500)"
// @Success 200 {array} eventResponse
// @Failure 400 {string} string "parámetros inválidos"
// @Failure 401 {string} string "unauthenticated"
// @Failure 403 {string} string "forbidden"
// @Failure 503 {string} string "store unavailable"
// @Router /incidents/{id}/activity [get]
func listActivityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		list, err := svc.ListByIncident(r.Context(), middleware.Principal(r.Context()), chi.URLParam(r, "id"), filter)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnauthenticated):
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			}
			return
		}

		out := make([]eventResponse, 0, len(list))
		for _, e := range list {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("types")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if t := strings.TrimSpace(part); t != "" {
				f.Types = append(f.Types, Type(t))
			}
		}
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return ListFilter{}, errors.New("limit must be between 1 and 500")
		}
		f.Limit = n
	}
	return f, nil
}

func toEventResponse(e Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		Type:         e.Type,
		IncidentID:   e.IncidentID,
		ActorID:      e.Actor.ID,
		ActorRole:    e.Actor.Role,
		OccurredAt:   e.OccurredAt,
		Status:       e.Status,
		HelpfulCount: e.HelpfulCount,
		ImageRef:     e.ImageRef,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
