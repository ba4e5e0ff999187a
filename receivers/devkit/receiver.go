package devkit

import (
	"github.com/goliatone/go-receivers/core"
)

const ReceiverID = "devkit"

// Metadata describes the local development receiver: JSON bodies
// authenticated by a static shared code in the code query parameter. Meant
// for tooling and smoke tests where computing a signature is friction.
func Metadata() core.ReceiverMetadata {
	return core.ReceiverMetadata{
		Name:     ReceiverID,
		BodyType: core.BodyTypeJSON,
		Strategy: core.StrategyStaticCode,
	}
}
