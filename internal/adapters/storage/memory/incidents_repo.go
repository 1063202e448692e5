package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"psyjaciele/internal/domain/incidents"
)

type incidentRepo struct {
	mu   sync.RWMutex
	byID map[string]incidents.Incident
}

func NewIncidentRepo() incidents.Repository {
	return &incidentRepo{
		byID: make(map[string]incidents.Incident),
	}
}

func (r *incidentRepo) Create(ctx context.Context, inc incidents.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(inc.ID) == "" {
		return errors.New("incident id required")
	}
	if _, exists := r.byID[inc.ID]; exists {
		return errors.New("incident already exists")
	}
	r.byID[inc.ID] = inc.Clone()
	return nil
}

func (r *incidentRepo) GetByID(ctx context.Context, id string) (incidents.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inc, ok := r.byID[id]
	if !ok {
		return incidents.Incident{}, incidents.ErrNotFound
	}
	return inc.Clone(), nil
}

func (r *incidentRepo) List(ctx context.Context, filter incidents.ListFilter) ([]incidents.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]incidents.Incident, 0, len(r.byID))
	for _, inc := range r.byID {
		if filter.Matches(inc.Status) {
			out = append(out, inc.Clone())
		}
	}

	// más nuevo primero; id como desempate para que el orden sea estable
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *incidentRepo) TransitionStatus(ctx context.Context, id string, from, to incidents.Status, at time.Time) (incidents.Incident, error) {
	return r.update(id, func(inc *incidents.Incident) error {
		if inc.Status != from {
			return incidents.ErrInvalidTransition
		}
		inc.Status = to
		inc.UpdatedAt = at
		return nil
	})
}

func (r *incidentRepo) IncrementHelpful(ctx context.Context, id string, at time.Time) (incidents.Incident, error) {
	return r.update(id, func(inc *incidents.Incident) error {
		inc.HelpfulCount++
		inc.UpdatedAt = at
		return nil
	})
}

func (r *incidentRepo) AddImage(ctx context.Context, id, ref string, at time.Time) (incidents.Incident, error) {
	return r.update(id, func(inc *incidents.Incident) error {
		inc.Images = append(inc.Images, ref)
		inc.UpdatedAt = at
		return nil
	})
}

func (r *incidentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return incidents.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// update aplica fn bajo el lock de escritura: read-modify-write atómico.
func (r *incidentRepo) update(id string, fn func(inc *incidents.Incident) error) (incidents.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inc, ok := r.byID[id]
	if !ok {
		return incidents.Incident{}, incidents.ErrNotFound
	}
	inc = inc.Clone()
	if err := fn(&inc); err != nil {
		return incidents.Incident{}, err
	}
	r.byID[id] = inc
	return inc.Clone(), nil
}
