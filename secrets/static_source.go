package secrets

import (
	"strings"
)

// StaticSource is an in-memory core.ConfigSource backed by a flat map of
// dot-separated keys. It is loaded once at startup and read-only afterwards,
// so concurrent readers need no coordination beyond the construction copy.
type StaticSource struct {
	values map[string]string
}

func NewStaticSource(values map[string]string) *StaticSource {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		copied[trimmed] = value
	}
	return &StaticSource{values: copied}
}

func (s *StaticSource) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	value, ok := s.values[strings.TrimSpace(key)]
	return value, ok
}

// Section returns every entry below prefix, keyed by the remainder of the
// path. A key equal to the prefix itself is returned under the empty string.
func (s *StaticSource) Section(prefix string) (map[string]string, bool) {
	if s == nil {
		return nil, false
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return nil, false
	}
	out := map[string]string{}
	for key, value := range s.values {
		if key == prefix {
			out[""] = value
			continue
		}
		if strings.HasPrefix(key, prefix+".") {
			out[strings.TrimPrefix(key, prefix+".")] = value
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
