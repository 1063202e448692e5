package incidents

import (
	"fmt"
	"strings"
	"time"
)

type CreateInput struct {
	Description  string
	Location     Location
	Date         string
	Time         string
	DogName      string
	ReporterName string
}

// Validate chequea los campos obligatorios. El error envuelve ErrInvalidInput
// y nombra el campo.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Location.Address) == "" {
		return fmt.Errorf("%w: location.address is required", ErrInvalidInput)
	}

	lat, lng := in.Location.Latitude, in.Location.Longitude
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("%w: location latitude and longitude go together", ErrInvalidInput)
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return fmt.Errorf("%w: location.latitude out of range", ErrInvalidInput)
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return fmt.Errorf("%w: location.longitude out of range", ErrInvalidInput)
	}

	if strings.TrimSpace(in.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(in.Date)); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Time) == "" {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if _, err := time.Parse(TimeLayout, strings.TrimSpace(in.Time)); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}
	return nil
}

// Normalize recorta espacios y aplica el nombre por defecto del reportante.
func (in CreateInput) Normalize() CreateInput {
	in.Description = strings.TrimSpace(in.Description)
	in.Location.Address = strings.TrimSpace(in.Location.Address)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.DogName = strings.TrimSpace(in.DogName)
	in.ReporterName = strings.TrimSpace(in.ReporterName)
	if in.ReporterName == "" {
		in.ReporterName = AnonymousReporter
	}
	return in
}
