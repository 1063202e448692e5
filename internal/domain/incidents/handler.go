package incidents

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"psyjaciele/internal/middleware"
	"psyjaciele/internal/ports/auth"
	"psyjaciele/internal/ports/authz"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes se monta dentro del subrouter /incidents.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/", listHandler(svc))
	r.Post("/", createHandler(svc))
	r.Get("/stats", statsHandler(svc))
	r.Get("/admin/all", adminListHandler(svc))

	r.Get("/{id}", getHandler(svc))
	r.Delete("/{id}", deleteHandler(svc))
	r.Post("/{id}/helpful", helpfulHandler(svc))
	r.Patch("/{id}/status", changeStatusHandler(svc))
	r.Post("/{id}/images", attachImageHandler(svc))
}

type locationPayload struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// createIncidentRequest es el cuerpo para reportar un envenenamiento.
type createIncidentRequest struct {
	Description  string          `json:"description"`
	Location     locationPayload `json:"location"`
	Date         string          `json:"date"` // YYYY-MM-DD
	Time         string          `json:"time"` // HH:MM
	DogName      string          `json:"dog_name"`
	ReporterName string          `json:"reporter_name"`
}

type changeStatusRequest struct {
	Status Status `json:"status" enums:"approved,rejected"`
}

// incidentResponse representa un incidente devuelto por la API.
type incidentResponse struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Location     locationPayload `json:"location"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	DogName      string          `json:"dog_name,omitempty"`
	ReporterName string          `json:"reporter_name"`
	Status       Status          `json:"status" enums:"pending,approved,rejected"`
	HelpfulCount int             `json:"helpful_count"`
	ReportedBy   string          `json:"reported_by"`
	Images       []string        `json:"images"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type statsResponse struct {
	Total      int            `json:"total"`
	Last7Days  int            `json:"last_7_days"`
	Last30Days int            `json:"last_30_days"`
	ByStatus   map[Status]int `json:"by_status,omitempty"`
}

// listHandler godoc
// @Summary Listar incidentes públicos
// @Description Lista los incidentes aprobados, más nuevos primero. Es la vista pública: un admin también recibe solo aprobados (para todo usar /incidents/admin/all).
// @Tags incidents
// @Produce json
// @Success 200 {array} incidentResponse
// @Failure 503 {string} string "store unavailable"
// @Router /incidents [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), auth.Anonymous(), ListFilter{})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncidentResponses(list))
	}
}

// adminListHandler godoc
// @Summary Listar todos los incidentes (admin)
// @Description Lista incidentes de cualquier estado. Filtro opcional por estado. Autenticación: `X-Debug-User-ID` + `X-Debug-Role` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags incidents
// @Produce json
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "Lista CSV de estados (pending,approved,rejected)"
// @Success 200 {array} incidentResponse
// @Failure 400 {string} string "estado inválido"
// @Failure 401 {string} string "unauthenticated"
// @Failure 403 {string} string "forbidden"
// @Failure 503 {string} string "store unavailable"
// @Router /incidents/admin/all [get]
func adminListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.Principal(r.Context())
		if err := svc.authorize(caller, authz.ActionReadAll); err != nil {
			writeError(w, err)
			return
		}

		var filter ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if st := strings.TrimSpace(part); st != "" {
					filter.Statuses = append(filter.Statuses, Status(strings.ToLower(st)))
				}
			}
		}

		list, err := svc.List(r.Context(), caller, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncidentResponses(list))
	}
}

// getHandler godoc
// @Summary Obtener incidente
// @Tags incidents
// @Produce json
// @Param id path string true "ID del incidente"
// @Success 200 {object} incidentResponse
// @Failure 404 {string} string "incident not found"
// @Router /incidents/{id} [get]
func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inc, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncidentResponse(inc))
	}
}

// createHandler godoc
// @Summary Reportar incidente
// @Description Crea un incidente. Queda pending salvo que lo cree un admin (approved). Requiere usuario autenticado.
// @Tags incidents
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createIncidentRequest true "Datos del incidente"
// @Success 201 {object} incidentResponse
// @Failure 400 {string} string "invalid json / campo faltante"
// @Failure 401 {string} string "unauthenticated"
// @Failure 503 {string} string "store unavailable"
// @Router /incidents [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.Principal(r.Context())
		if !caller.IsAuthenticated() {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var req createIncidentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inc, err := svc.Create(r.Context(), caller, CreateInput{
			Description: req.Description,
			Location: Location{
				Address:   req.Location.Address,
				Latitude:  req.Location.Latitude,
				Longitude: req.Location.Longitude,
			},
			Date:         req.Date,
			Time:         req.Time,
			DogName:      req.DogName,
			ReporterName: req.ReporterName,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toIncidentResponse(inc))
	}
}

// helpfulHandler godoc
// @Summary Marcar incidente como útil
// @Description Suma 1 a helpful_count. No requiere sesión y no deduplica.
// @Tags incidents
// @Produce json
// @Param id path string true "ID del incidente"
// @Success 200 {object} incidentResponse
// @Failure 404 {string} string "incident not found"
// @Failure 503 {string} string "store unavailable"
// @Router /incidents/{id}/helpful [post]
func helpfulHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inc, err := svc.MarkHelpful(r.Context(), middleware.Principal(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncidentResponse(inc))
	}
}

// changeStatusHandler godoc
// @Summary Moderar incidente (admin)
// @Description Aprueba o rechaza un incidente pendiente. Repetir el mismo estado no falla; cambiar un estado final devuelve 409.
// @Tags incidents
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del incidente"
// @Param payload body changeStatusRequest true "Nuevo estado"
// @Success 200 {object} incidentResponse
// @Failure 400 {string} string "invalid json / estado inválido"
// @Failure 401 {string} string "unauthenticated"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "incident not found"
// @Failure 409 {string} string "invalid status transition"
// @Router /incidents/{id}/status [patch]
func changeStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.Principal(r.Context())

		var req changeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		inc, err := svc.ChangeStatus(r.Context(), caller, chi.URLParam(r, "id"), Status(strings.ToLower(strings.TrimSpace(string(req.Status)))))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncidentResponse(inc))
	}
}

// deleteHandler godoc
// @Summary Borrar incidente (admin)
// @Tags incidents
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del incidente"
// @Success 204 {string} string "no content"
// @Failure 401 {string} string "unauthenticated"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "incident not found"
// @Router /incidents/{id} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.Principal(r.Context()), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// attachImageHandler godoc
// @Summary Adjuntar imagen
// @Description Sube una imagen (campo multipart `image`, máx 10MB). El autor del reporte o un admin.
// @Tags incidents
// @Accept mpfd
// @Produce json
// @Param Authorization header string false "Bearer token en producción"
// @Param id path string true "ID del incidente"
// @Param image formData file true "Imagen"
// @Success 200 {object} incidentResponse
// @Failure 400 {string} string "imagen faltante / inválida"
// @Failure 401 {string} string "unauthenticated"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "incident not found"
// @Failure 503 {string} string "store unavailable"
// @Router /incidents/{id}/images [post]
func attachImageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.Principal(r.Context())
		if !caller.IsAuthenticated() {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+(1<<20))
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "image is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		inc, err := svc.AttachImage(r.Context(), caller, chi.URLParam(r, "id"), ImageUpload{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncidentResponse(inc))
	}
}

// statsHandler godoc
// @Summary Métricas de reportes
// @Description Total, últimos 7 y 30 días sobre lo que ve quien llama. Admin recibe además el conteo por estado.
// @Tags incidents
// @Produce json
// @Success 200 {object} statsResponse
// @Failure 503 {string} string "store unavailable"
// @Router /incidents/stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context(), middleware.Principal(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{
			Total:      st.Total,
			Last7Days:  st.Last7Days,
			Last30Days: st.Last30Days,
			ByStatus:   st.ByStatus,
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnauthenticated):
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "incident not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}
}

func toIncidentResponse(inc Incident) incidentResponse {
	images := inc.Images
	if images == nil {
		images = []string{}
	}
	return incidentResponse{
		ID:          inc.ID,
		Description: inc.Description,
		Location: locationPayload{
			Address:   inc.Location.Address,
			Latitude:  inc.Location.Latitude,
			Longitude: inc.Location.Longitude,
		},
		Date:         inc.Date,
		Time:         inc.Time,
		DogName:      inc.DogName,
		ReporterName: inc.ReporterName,
		Status:       inc.Status,
		HelpfulCount: inc.HelpfulCount,
		ReportedBy:   inc.ReportedBy,
		Images:       images,
		CreatedAt:    inc.CreatedAt,
		UpdatedAt:    inc.UpdatedAt,
	}
}

func toIncidentResponses(list []Incident) []incidentResponse {
	out := make([]incidentResponse, 0, len(list))
	for _, inc := range list {
		out = append(out, toIncidentResponse(inc))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
