package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-receivers/core"
)

var (
	_ gocmd.Querier[GetReceiverMessage, core.ReceiverMetadata]     = (*GetReceiverQuery)(nil)
	_ gocmd.Querier[ListReceiversMessage, []core.ReceiverMetadata] = (*ListReceiversQuery)(nil)
	_ gocmd.Querier[ListConfigurationsMessage, []string]           = (*ListConfigurationsQuery)(nil)
	_ gocmd.Querier[HasSecretKeysMessage, bool]                    = (*HasSecretKeysQuery)(nil)
)
