package events

import "context"

type Repository interface {
	Append(ctx context.Context, e Event) error
	ListByIncident(ctx context.Context, incidentID string, filter ListFilter) ([]Event, error)
}

// ListFilter: Types vacío = todos. Limit <= 0 = sin límite.
type ListFilter struct {
	Types []Type
	Limit int
}
