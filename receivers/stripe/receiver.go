package stripe

import (
	"strings"

	"github.com/goliatone/go-receivers/core"
)

const (
	ReceiverID      = "stripe"
	SignatureHeader = "Stripe-Signature"

	signedPayloadVersion = "v1"
)

// Metadata describes Stripe webhook deliveries: JSON bodies with a
// structured Stripe-Signature header holding comma-separated key=value
// pairs. Every v1 element is a candidate digest; t and other schemes are
// ignored.
func Metadata() core.ReceiverMetadata {
	return core.ReceiverMetadata{
		Name:     ReceiverID,
		BodyType: core.BodyTypeJSON,
		Strategy: core.StrategyBodySignature,
		Signature: &core.SignatureScheme{
			Header:    SignatureHeader,
			Encoding:  core.SignatureEncodingHex,
			Algorithm: core.SignatureAlgorithmSHA256,
			Parser:    ParseSignatureHeader,
		},
	}
}

// ParseSignatureHeader extracts every v1 candidate from a Stripe-Signature
// value such as "t=1700000000,v1=5257a8...,v1=ffa1b2...". Unknown schemes
// and malformed pairs are skipped rather than rejected so future header
// additions stay backward compatible.
func ParseSignatureHeader(value string) ([]string, error) {
	var candidates []string
	for _, pair := range strings.Split(value, ",") {
		scheme, digest, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		if strings.TrimSpace(scheme) != signedPayloadVersion {
			continue
		}
		if digest = strings.TrimSpace(digest); digest != "" {
			candidates = append(candidates, digest)
		}
	}
	return candidates, nil
}
