package incidents

import (
	"context"
	"time"
)

// Repository es el Incident Record Store.
// Las implementaciones devuelven ErrNotFound / ErrInvalidTransition de este
// paquete; cualquier otro error se trata como store no disponible.
type Repository interface {
	Create(ctx context.Context, inc Incident) error
	GetByID(ctx context.Context, id string) (Incident, error)

	// List ordena por created_at descendente.
	List(ctx context.Context, filter ListFilter) ([]Incident, error)

	// TransitionStatus cambia from -> to solo si el estado actual es from.
	TransitionStatus(ctx context.Context, id string, from, to Status, at time.Time) (Incident, error)

	// IncrementHelpful suma exactamente 1 de forma atómica.
	IncrementHelpful(ctx context.Context, id string, at time.Time) (Incident, error)

	AddImage(ctx context.Context, id, ref string, at time.Time) (Incident, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter: Statuses vacío = todos.
type ListFilter struct {
	Statuses []Status
}

func (f ListFilter) Matches(s Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if want == s {
			return true
		}
	}
	return false
}
