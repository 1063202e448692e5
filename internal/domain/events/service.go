package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"psyjaciele/internal/ports/auth"
	"psyjaciele/internal/ports/authz"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Service guarda el historial de actividad de cada incidente.
// Implementa Publisher para engancharse en el fan-out de eventos.
type Service struct {
	repo  Repository
	authz authz.Authorizer
	now   func() time.Time
}

func NewService(repo Repository, authorizer authz.Authorizer) *Service {
	return &Service{
		repo:  repo,
		authz: authorizer,
		now:   time.Now,
	}
}

func (s *Service) Publish(ctx context.Context, e Event) error {
	if strings.TrimSpace(e.IncidentID) == "" || !e.Type.Valid() {
		return ErrInvalidInput
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ListByIncident devuelve la actividad de un incidente, más viejo primero.
// Solo admin: incluye actores y estados de moderación.
func (s *Service) ListByIncident(ctx context.Context, caller auth.Principal, incidentID string, filter ListFilter) ([]Event, error) {
	if !s.authz.Can(caller.EffectiveRole(), authz.ActionReadAll) {
		if !caller.IsAuthenticated() {
			return nil, ErrUnauthenticated
		}
		return nil, ErrForbidden
	}

	incidentID = strings.TrimSpace(incidentID)
	if incidentID == "" {
		return nil, ErrInvalidInput
	}
	for _, t := range filter.Types {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, t)
		}
	}

	list, err := s.repo.ListByIncident(ctx, incidentID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return list, nil
}
