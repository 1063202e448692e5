package localstore

import "context"

// Store es un almacenamiento clave/valor local (equivalente a localStorage).
// Get devuelve ok=false si la clave no existe.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
