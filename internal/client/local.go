package client

import (
	"context"
	"encoding/json"
	"sort"

	"psyjaciele/internal/domain/incidents"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/ports/localstore"
)

// IncidentsKey es la clave del blob con la lista completa.
const IncidentsKey = "incidents"

// LocalStore persiste la lista entera como un único JSON.
// Nunca devuelve error: cualquier falla se loguea y cuenta como "sin datos".
type LocalStore struct {
	kv  localstore.Store
	log logger.Logger
}

func NewLocalStore(kv localstore.Store, log logger.Logger) *LocalStore {
	if log == nil {
		log = logger.Nop()
	}
	return &LocalStore{kv: kv, log: log.With(map[string]any{"component": "local_store"})}
}

func (s *LocalStore) Load(ctx context.Context) []Incident {
	raw, ok, err := s.kv.Get(ctx, IncidentsKey)
	if err != nil {
		s.log.Error("local load failed", map[string]any{"error": err})
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}

	// json.Unmarshal sobre un slice falla si el payload no es un array
	var list []Incident
	if err := json.Unmarshal(raw, &list); err != nil {
		s.log.Error("local data is not a valid incident list, ignoring it", map[string]any{"error": err})
		return nil
	}
	s.log.Debug("loaded incidents from local storage", map[string]any{"count": len(list)})
	return list
}

// Save pisa el blob con list. Una lista vacía no se guarda para no borrar
// datos previos después de un fetch fallido.
func (s *LocalStore) Save(ctx context.Context, list []Incident) {
	if len(list) == 0 {
		return
	}

	stripped := make([]Incident, len(list))
	for i, inc := range list {
		inc.Images = nil
		stripped[i] = inc
	}

	raw, err := json.Marshal(stripped)
	if err != nil {
		s.log.Error("local save failed", map[string]any{"error": err})
		return
	}
	if err := s.kv.Set(ctx, IncidentsKey, raw); err != nil {
		s.log.Error("local save failed", map[string]any{"error": err, "count": len(list)})
		return
	}
	s.log.Debug("saved incidents to local storage", map[string]any{"count": len(list)})
}

// SaveMirror guarda una lista que vino del server sin perder los
// registros creados localmente: los que ya están en el blob con
// reported_by Anonymous y cuyo id no aparece en list se conservan.
// El resultado queda ordenado por created_at descendente.
func (s *LocalStore) SaveMirror(ctx context.Context, list []Incident) {
	seen := make(map[string]struct{}, len(list))
	for _, inc := range list {
		seen[inc.ID] = struct{}{}
	}

	merged := append([]Incident(nil), list...)
	kept := 0
	for _, inc := range s.Load(ctx) {
		if !isLocalOnly(inc) {
			continue
		}
		if _, ok := seen[inc.ID]; ok {
			continue
		}
		merged = append(merged, inc)
		kept++
	}
	if kept > 0 {
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		})
		s.log.Debug("kept local-only incidents next to server mirror", map[string]any{"kept": kept})
	}
	s.Save(ctx, merged)
}

// isLocalOnly: el server nunca guarda incidentes anónimos, así que
// reported_by Anonymous identifica lo sintetizado en este dispositivo.
func isLocalOnly(inc Incident) bool {
	return inc.ReportedBy == incidents.AnonymousReporter
}
