package client

import (
	"time"

	"psyjaciele/internal/domain/incidents"
)

type Location struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Incident es la forma que viaja por la API y la que se guarda localmente.
// Images nunca se persiste en el blob local.
type Incident struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Location     Location  `json:"location"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	DogName      string    `json:"dog_name,omitempty"`
	ReporterName string    `json:"reporter_name"`
	Status       string    `json:"status"`
	HelpfulCount int       `json:"helpful_count"`
	ReportedBy   string    `json:"reported_by"`
	Images       []string  `json:"images,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (i Incident) clone() Incident {
	if i.Images != nil {
		i.Images = append([]string(nil), i.Images...)
	}
	return i
}

type CreateInput struct {
	Description  string   `json:"description"`
	Location     Location `json:"location"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	DogName      string   `json:"dog_name,omitempty"`
	ReporterName string   `json:"reporter_name,omitempty"`
}

// domain traduce el input a la forma del servicio para reusar su validación.
func (in CreateInput) domain() incidents.CreateInput {
	return incidents.CreateInput{
		Description: in.Description,
		Location: incidents.Location{
			Address:   in.Location.Address,
			Latitude:  in.Location.Latitude,
			Longitude: in.Location.Longitude,
		},
		Date:         in.Date,
		Time:         in.Time,
		DogName:      in.DogName,
		ReporterName: in.ReporterName,
	}
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Source indica de dónde salió la lista vigente.
type Source string

const (
	SourceNone   Source = ""
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)
