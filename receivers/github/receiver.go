package github

import (
	"github.com/goliatone/go-receivers/core"
)

const (
	ReceiverID      = "github"
	SignatureHeader = "X-Hub-Signature-256"
	SignaturePrefix = "sha256="
	EventHeader     = "X-GitHub-Event"
	DeliveryHeader  = "X-GitHub-Delivery"
)

// Metadata describes GitHub webhook deliveries: JSON bodies signed with an
// HMAC-SHA256 hex digest carried in X-Hub-Signature-256 behind a sha256=
// scheme prefix.
func Metadata() core.ReceiverMetadata {
	return core.ReceiverMetadata{
		Name:     ReceiverID,
		BodyType: core.BodyTypeJSON,
		Strategy: core.StrategyBodySignature,
		Signature: &core.SignatureScheme{
			Header:    SignatureHeader,
			Prefix:    SignaturePrefix,
			Encoding:  core.SignatureEncodingHex,
			Algorithm: core.SignatureAlgorithmSHA256,
		},
	}
}
