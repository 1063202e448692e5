package events

import "time"

type Type string

const (
	TypeIncidentCreated       Type = "incident.created"
	TypeIncidentHelpfulMarked Type = "incident.helpful_marked"
	TypeIncidentStatusChanged Type = "incident.status_changed"
	TypeIncidentDeleted       Type = "incident.deleted"
	TypeIncidentImageAttached Type = "incident.image_attached"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncidentCreated, TypeIncidentHelpfulMarked, TypeIncidentStatusChanged,
		TypeIncidentDeleted, TypeIncidentImageAttached:
		return true
	}
	return false
}

// Actor es quien provocó el evento. Role "anonymous" y ID vacío para
// acciones públicas (helpful).
type Actor struct {
	ID   string `json:"id,omitempty"`
	Role string `json:"role"`
}

// Event es un hecho ya ocurrido sobre un incidente. Se serializa tal cual
// hacia RabbitMQ, por eso lleva tags json.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	IncidentID string    `json:"incident_id"`
	Actor      Actor     `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`

	// Estado del incidente después del evento; solo lo que aplica.
	Status       string `json:"status,omitempty"`
	HelpfulCount int    `json:"helpful_count,omitempty"`
	ImageRef     string `json:"image_ref,omitempty"`
}
