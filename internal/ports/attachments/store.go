package attachments

import (
	"context"
	"io"
)

// Store guarda payloads binarios y devuelve una referencia opaca.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
