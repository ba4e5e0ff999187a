package shopify

import (
	"github.com/goliatone/go-receivers/core"
)

const (
	ReceiverID      = "shopify"
	SignatureHeader = "X-Shopify-Hmac-Sha256"
	TopicHeader     = "X-Shopify-Topic"
)

// Metadata describes Shopify webhook deliveries: JSON bodies signed with an
// HMAC-SHA256 digest, base64-encoded with no scheme prefix.
func Metadata() core.ReceiverMetadata {
	return core.ReceiverMetadata{
		Name:     ReceiverID,
		BodyType: core.BodyTypeJSON,
		Strategy: core.StrategyBodySignature,
		Signature: &core.SignatureScheme{
			Header:    SignatureHeader,
			Encoding:  core.SignatureEncodingBase64,
			Algorithm: core.SignatureAlgorithmSHA256,
		},
	}
}
