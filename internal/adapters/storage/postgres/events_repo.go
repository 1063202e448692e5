package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"psyjaciele/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Append(ctx context.Context, e events.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incident_events (
			id, incident_id, type,
			actor_id, actor_role,
			status, helpful_count, image_ref,
			occurred_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		e.ID,
		e.IncidentID,
		string(e.Type),
		e.Actor.ID,
		e.Actor.Role,
		e.Status,
		e.HelpfulCount,
		e.ImageRef,
		e.OccurredAt,
	)
	return err
}

func (r *EventsRepo) ListByIncident(ctx context.Context, incidentID string, filter events.ListFilter) ([]events.Event, error) {
	incidentID = strings.TrimSpace(incidentID)
	if incidentID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, incident_id, type,
			actor_id, actor_role,
			status, helpful_count, image_ref,
			occurred_at
		FROM incident_events
		WHERE incident_id = $1
	`)

	args := []any{incidentID}
	argN := 2

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	sb.WriteString(" ORDER BY occurred_at ASC, id ASC")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		var e events.Event
		var typ string
		if err := rows.Scan(
			&e.ID,
			&e.IncidentID,
			&typ,
			&e.Actor.ID,
			&e.Actor.Role,
			&e.Status,
			&e.HelpfulCount,
			&e.ImageRef,
			&e.OccurredAt,
		); err != nil {
			return nil, err
		}
		e.Type = events.Type(typ)
		out = append(out, e)
	}

	return out, rows.Err()
}
