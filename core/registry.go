package core

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// MetadataRegistry is the process-wide table of receiver descriptors.
// It is populated at startup and read-only afterwards; lookups are safe
// for unlimited concurrent readers.
type MetadataRegistry struct {
	mu        sync.RWMutex
	receivers map[string]ReceiverMetadata
}

func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{receivers: make(map[string]ReceiverMetadata)}
}

func (r *MetadataRegistry) Register(metadata ReceiverMetadata) error {
	if r == nil {
		return goerrors.New("core: metadata registry is nil", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ReceiverErrorInternal)
	}
	if err := metadata.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "core: invalid receiver metadata").
			WithCode(http.StatusBadRequest).
			WithTextCode(ReceiverErrorBadInput).
			WithMetadata(map[string]any{"receiver": metadata.Name})
	}
	name := strings.TrimSpace(strings.ToLower(metadata.Name))
	metadata.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.receivers[name]; exists {
		return goerrors.New("core: receiver already registered: "+name, goerrors.CategoryConflict).
			WithCode(http.StatusConflict).
			WithTextCode(ReceiverErrorConflict).
			WithMetadata(map[string]any{"receiver": name})
	}
	r.receivers[name] = metadata
	return nil
}

// Metadata returns the descriptor for a registered receiver. Unregistered
// names are a configuration error, surfaced immediately and never defaulted.
func (r *MetadataRegistry) Metadata(receiverName string) (ReceiverMetadata, error) {
	name := strings.TrimSpace(strings.ToLower(receiverName))
	if name == "" {
		return ReceiverMetadata{}, goerrors.New("core: receiver name is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(ReceiverErrorBadInput)
	}
	if r == nil {
		return ReceiverMetadata{}, goerrors.New("core: metadata registry is nil", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ReceiverErrorInternal)
	}
	r.mu.RLock()
	metadata, ok := r.receivers[name]
	r.mu.RUnlock()
	if !ok {
		return ReceiverMetadata{}, goerrors.New("core: receiver not registered: "+name, goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(ReceiverErrorNotFound).
			WithMetadata(map[string]any{"receiver": name})
	}
	return metadata, nil
}

func (r *MetadataRegistry) Has(receiverName string) bool {
	if r == nil {
		return false
	}
	name := strings.TrimSpace(strings.ToLower(receiverName))
	if name == "" {
		return false
	}
	r.mu.RLock()
	_, ok := r.receivers[name]
	r.mu.RUnlock()
	return ok
}

func (r *MetadataRegistry) List() []ReceiverMetadata {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.receivers))
	for name := range r.receivers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ReceiverMetadata, 0, len(names))
	for _, name := range names {
		out = append(out, r.receivers[name])
	}
	return out
}
