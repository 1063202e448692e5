package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"psyjaciele/internal/domain/incidents"
	"psyjaciele/internal/platform/httpclient"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	// ErrUnavailable: el server no respondió o respondió 5xx.
	ErrUnavailable = errors.New("remote unavailable")
)

// translate lleva errores de transporte/HTTP a los sentinels del paquete.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, httpclient.ErrTransport) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	code, ok := httpclient.StatusCode(err)
	if !ok {
		// respuesta ilegible: para el cache es lo mismo que no tener server
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case code == http.StatusConflict:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case code >= 500:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
}

// localValidationErr reetiqueta el error de validación del dominio.
func localValidationErr(err error) error {
	if errors.Is(err, incidents.ErrInvalidInput) {
		detail := strings.TrimPrefix(err.Error(), incidents.ErrInvalidInput.Error()+": ")
		return fmt.Errorf("%w: %s", ErrInvalidInput, detail)
	}
	return err
}
