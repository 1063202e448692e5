package memory

import (
	"context"
	"sync"

	"psyjaciele/internal/ports/localstore"
)

// KVStore es un localstore.Store en memoria. Lo usan los tests del cliente
// y el CLI cuando no puede abrir el archivo sqlite.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ localstore.Store = (*KVStore)(nil)

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
