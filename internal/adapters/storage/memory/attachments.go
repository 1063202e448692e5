package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"psyjaciele/internal/ports/attachments"
)

// AttachmentStore guarda los adjuntos en memoria. Para dev y tests
// cuando no hay MinIO configurado.
type AttachmentStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ attachments.Store = (*AttachmentStore)(nil)

func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{objects: make(map[string][]byte)}
}

func (s *AttachmentStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	b, err := io.ReadAll(io.LimitReader(body, size+1))
	if err != nil {
		return "", err
	}
	if int64(len(b)) != size {
		return "", fmt.Errorf("size mismatch for %s: declared %d, got %d", key, size, len(b))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return "memory/" + key, nil
}

func (s *AttachmentStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}
