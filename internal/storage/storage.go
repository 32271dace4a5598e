package storage

import (
	"context"
	"fmt"
	"io"
)

// ObjectInfo is the metadata a provider reports for a stored object.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// ObjectStore abstracts a single content provider bucket. Implementations
// are external collaborators; nothing in the core retries their failures.
type ObjectStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
}

// Registry maps provider names (as recorded on LessonContent rows) to
// their stores. It is assembled once at startup and read-only after.
type Registry map[string]ObjectStore

func (r Registry) Lookup(provider string) (ObjectStore, error) {
	store, ok := r[provider]
	if !ok {
		return nil, fmt.Errorf("unknown content provider %q", provider)
	}
	return store, nil
}
