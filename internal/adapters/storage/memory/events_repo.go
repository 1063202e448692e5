package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"psyjaciele/internal/domain/events"
)

type eventRepo struct {
	mu         sync.RWMutex
	byIncident map[string][]events.Event
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byIncident: make(map[string][]events.Event),
	}
}

func (r *eventRepo) Append(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id required")
	}
	r.byIncident[e.IncidentID] = append(r.byIncident[e.IncidentID], e)
	return nil
}

func (r *eventRepo) ListByIncident(ctx context.Context, incidentID string, filter events.ListFilter) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.Event, 0)
	for _, e := range r.byIncident[incidentID] {
		if !matchesType(filter.Types, e.Type) {
			continue
		}
		out = append(out, e)
	}

	// más viejo primero
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesType(types []events.Type, t events.Type) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}
