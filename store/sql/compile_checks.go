package sqlstore

import "github.com/goliatone/go-receivers/core"

var (
	_ core.SecretResolver = (*SecretStore)(nil)
	_ core.SecretResolver = (*CachedSecretStore)(nil)
)
