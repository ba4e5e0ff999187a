package inbound

import "github.com/goliatone/go-receivers/core"

var _ core.ClaimStore = (*InMemoryClaimStore)(nil)
