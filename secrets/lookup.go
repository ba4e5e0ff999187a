package secrets

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-receivers/core"
)

const (
	defaultKeyPrefix     = "receivers"
	defaultSecretKeyNode = "secretKey"
	defaultKeyDelimiter  = ","
)

// Lookup resolves receiver secret key sets from a hierarchical key-value
// configuration source under receivers.<name>.secretKey.<id>. The source is
// read-only; absence of a section means "not configured for this id" and is
// reported via the boolean return, never as an error.
type Lookup struct {
	source    core.ConfigSource
	prefix    string
	node      string
	defaultID string
	delimiter string
}

type Option func(*Lookup)

func WithKeyPrefix(prefix string) Option {
	return func(l *Lookup) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			l.prefix = trimmed
		}
	}
}

func WithSecretKeyNode(node string) Option {
	return func(l *Lookup) {
		trimmed := strings.TrimSpace(node)
		if trimmed != "" {
			l.node = trimmed
		}
	}
}

func WithDefaultConfigurationID(id string) Option {
	return func(l *Lookup) {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			l.defaultID = trimmed
		}
	}
}

func WithKeyListDelimiter(delimiter string) Option {
	return func(l *Lookup) {
		if delimiter != "" {
			l.delimiter = delimiter
		}
	}
}

func NewLookup(source core.ConfigSource, opts ...Option) (*Lookup, error) {
	if source == nil {
		return nil, goerrors.New("secrets: config source is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ReceiverErrorBadInput)
	}
	lookup := &Lookup{
		source:    source,
		prefix:    defaultKeyPrefix,
		node:      defaultSecretKeyNode,
		defaultID: core.DefaultConfigurationID,
		delimiter: defaultKeyDelimiter,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(lookup)
	}
	return lookup, nil
}

// SecretKeys returns every secret configured for (receiverName,
// configurationID). A single configuration value may hold several
// delimiter-separated keys so a rotation can keep the outgoing key valid.
func (l *Lookup) SecretKeys(_ context.Context, receiverName, configurationID string) (core.SecretKeySet, bool, error) {
	if l == nil || l.source == nil {
		return nil, false, secretsInternal("secrets: lookup is not configured")
	}
	name := strings.TrimSpace(strings.ToLower(receiverName))
	if name == "" {
		return nil, false, secretsBadInput("secrets: receiver name is required")
	}
	key := core.ReceiverConfigKey{ReceiverName: name, ConfigurationID: configurationID}.Normalize()
	if key.ConfigurationID == core.DefaultConfigurationID && l.defaultID != core.DefaultConfigurationID {
		if strings.TrimSpace(configurationID) == "" {
			key.ConfigurationID = l.defaultID
		}
	}

	value, ok := l.source.Get(l.secretPath(key.ReceiverName, key.ConfigurationID))
	if !ok {
		return nil, false, nil
	}
	keys := splitKeys(value, l.delimiter)
	if keys.Empty() {
		return nil, false, nil
	}
	return keys, true, nil
}

// HasSecretKeys reports whether any configuration id is registered for a
// receiver. The host router consults this when deciding whether a receiver
// route is active at all.
func (l *Lookup) HasSecretKeys(_ context.Context, receiverName string) (bool, error) {
	if l == nil || l.source == nil {
		return false, secretsInternal("secrets: lookup is not configured")
	}
	name := strings.TrimSpace(strings.ToLower(receiverName))
	if name == "" {
		return false, secretsBadInput("secrets: receiver name is required")
	}
	section, ok := l.source.Section(l.prefix + "." + name + "." + l.node)
	if !ok {
		return false, nil
	}
	for _, value := range section {
		if !splitKeys(value, l.delimiter).Empty() {
			return true, nil
		}
	}
	return false, nil
}

func (l *Lookup) secretPath(receiverName, configurationID string) string {
	return strings.Join([]string{l.prefix, receiverName, l.node, configurationID}, ".")
}

func splitKeys(value, delimiter string) core.SecretKeySet {
	parts := strings.Split(value, delimiter)
	keys := make(core.SecretKeySet, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

func secretsBadInput(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ReceiverErrorBadInput)
}

func secretsInternal(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ReceiverErrorInternal)
}

var _ core.SecretResolver = (*Lookup)(nil)
