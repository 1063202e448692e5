package incidents

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Terminal: approved y rejected no vuelven a cambiar.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AnonymousReporter es el nombre por defecto y el reported_by de
// los registros creados sin sesión.
const AnonymousReporter = "Anonymous"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Location struct {
	Address   string
	Latitude  *float64
	Longitude *float64
}

type Incident struct {
	ID          string
	Description string
	Location    Location

	// Fecha y hora del envenenamiento tal como las carga el usuario.
	Date string
	Time string

	DogName      string
	ReporterName string

	Status       Status
	HelpfulCount int
	ReportedBy   string
	Images       []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone copia el slice de imágenes para que nadie comparta estado con el store.
func (i Incident) Clone() Incident {
	if i.Images != nil {
		i.Images = append([]string(nil), i.Images...)
	}
	if i.Location.Latitude != nil {
		v := *i.Location.Latitude
		i.Location.Latitude = &v
	}
	if i.Location.Longitude != nil {
		v := *i.Location.Longitude
		i.Location.Longitude = &v
	}
	return i
}
