package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"psyjaciele/internal/domain/incidents"
)

const addImageAttempts = 5

type IncidentsRepo struct {
	db *sql.DB
}

func NewIncidentsRepo(db *sql.DB) *IncidentsRepo {
	return &IncidentsRepo{db: db}
}

const incidentColumns = `
	id, description,
	address, latitude, longitude,
	occurred_date, occurred_time,
	dog_name, reporter_name,
	status, helpful_count, reported_by, images,
	created_at, updated_at
`

func (r *IncidentsRepo) Create(ctx context.Context, inc incidents.Incident) error {
	images, err := encodeImages(inc.Images)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO incidents (`+incidentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		inc.ID,
		inc.Description,
		inc.Location.Address,
		inc.Location.Latitude,
		inc.Location.Longitude,
		inc.Date,
		inc.Time,
		inc.DogName,
		inc.ReporterName,
		string(inc.Status),
		inc.HelpfulCount,
		inc.ReportedBy,
		images,
		inc.CreatedAt,
		inc.UpdatedAt,
	)
	return err
}

func (r *IncidentsRepo) GetByID(ctx context.Context, id string) (incidents.Incident, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return incidents.Incident{}, incidents.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id)
	return scanIncident(row)
}

func (r *IncidentsRepo) List(ctx context.Context, filter incidents.ListFilter) ([]incidents.Incident, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + incidentColumns + ` FROM incidents`)

	args := []any{}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
			args = append(args, string(st))
		}
		sb.WriteString(" WHERE status IN (" + strings.Join(placeholders, ",") + ")")
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]incidents.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// TransitionStatus es un UPDATE condicional: si no afecta filas se
// distingue entre inexistente y estado distinto de from.
func (r *IncidentsRepo) TransitionStatus(ctx context.Context, id string, from, to incidents.Status, at time.Time) (incidents.Incident, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE incidents
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING `+incidentColumns,
		id, string(from), string(to), at,
	)
	inc, err := scanIncident(row)
	if errors.Is(err, incidents.ErrNotFound) {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return incidents.Incident{}, gerr
		}
		return incidents.Incident{}, incidents.ErrInvalidTransition
	}
	return inc, err
}

func (r *IncidentsRepo) IncrementHelpful(ctx context.Context, id string, at time.Time) (incidents.Incident, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE incidents
		SET helpful_count = helpful_count + 1, updated_at = $2
		WHERE id = $1
		RETURNING `+incidentColumns,
		id, at,
	)
	return scanIncident(row)
}

// AddImage agrega ref al array JSON de images con compare-and-swap sobre
// el valor anterior: si otro writer lo cambió en el medio se reintenta.
func (r *IncidentsRepo) AddImage(ctx context.Context, id, ref string, at time.Time) (incidents.Incident, error) {
	for attempt := 0; attempt < addImageAttempts; attempt++ {
		cur, err := r.GetByID(ctx, id)
		if err != nil {
			return incidents.Incident{}, err
		}
		prev, err := encodeImages(cur.Images)
		if err != nil {
			return incidents.Incident{}, err
		}
		next, err := encodeImages(append(cur.Images, ref))
		if err != nil {
			return incidents.Incident{}, err
		}

		row := r.db.QueryRowContext(ctx, `
			UPDATE incidents
			SET images = $2, updated_at = $3
			WHERE id = $1 AND images = $4
			RETURNING `+incidentColumns,
			id, next, at, prev,
		)
		inc, err := scanIncident(row)
		if errors.Is(err, incidents.ErrNotFound) {
			continue
		}
		return inc, err
	}
	return incidents.Incident{}, fmt.Errorf("add image to incident %s: too many concurrent updates", id)
}

func (r *IncidentsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return incidents.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (incidents.Incident, error) {
	var inc incidents.Incident
	var lat, lng sql.NullFloat64
	var status, images string

	if err := row.Scan(
		&inc.ID,
		&inc.Description,
		&inc.Location.Address,
		&lat,
		&lng,
		&inc.Date,
		&inc.Time,
		&inc.DogName,
		&inc.ReporterName,
		&status,
		&inc.HelpfulCount,
		&inc.ReportedBy,
		&images,
		dbTime{&inc.CreatedAt},
		dbTime{&inc.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return incidents.Incident{}, incidents.ErrNotFound
		}
		return incidents.Incident{}, err
	}

	if lat.Valid && lng.Valid {
		inc.Location.Latitude = &lat.Float64
		inc.Location.Longitude = &lng.Float64
	}
	inc.Status = incidents.Status(status)
	if err := json.Unmarshal([]byte(images), &inc.Images); err != nil {
		return incidents.Incident{}, fmt.Errorf("decode images of %s: %w", inc.ID, err)
	}
	if inc.Images == nil {
		inc.Images = []string{}
	}
	inc.CreatedAt = inc.CreatedAt.UTC()
	inc.UpdatedAt = inc.UpdatedAt.UTC()
	return inc, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// dbTime acepta el timestamp nativo del driver o su forma de texto
// (sqlite devuelve texto cuando no conoce el tipo de la columna).
type dbTime struct{ t *time.Time }

var dbTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

func (d dbTime) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case time.Time:
		*d.t = v
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}

	// t.String() agrega la lectura monotónica al final
	if i := strings.Index(raw, " m="); i > 0 {
		raw = raw[:i]
	}
	for _, layout := range dbTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*d.t = t
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", raw)
}
