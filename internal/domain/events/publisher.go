package events

import (
	"context"
	"errors"
)

// Publisher recibe los eventos del ciclo de vida de incidentes.
// Quien publica no reintenta: un error se loguea y se sigue.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Multi entrega el evento a todos los publishers aunque alguno falle.
func Multi(pubs ...Publisher) Publisher {
	list := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			list = append(list, p)
		}
	}
	return multi(list)
}

type multi []Publisher

func (m multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
