package dropbox

import (
	"github.com/goliatone/go-receivers/core"
)

const (
	ReceiverID      = "dropbox"
	SignatureHeader = "X-Dropbox-Signature"
	ChallengeParam  = "challenge"
)

// Metadata describes Dropbox webhook deliveries. POST notifications carry a
// bare hex HMAC-SHA256 digest in X-Dropbox-Signature; GET requests are the
// endpoint verification handshake and are answered by echoing the challenge
// query parameter as text/plain without consulting any secret.
func Metadata() core.ReceiverMetadata {
	return core.ReceiverMetadata{
		Name:     ReceiverID,
		BodyType: core.BodyTypeJSON,
		Strategy: core.StrategyBodySignature,
		Signature: &core.SignatureScheme{
			Header:    SignatureHeader,
			Encoding:  core.SignatureEncodingHex,
			Algorithm: core.SignatureAlgorithmSHA256,
		},
		ShortCircuitGetRequests: true,
		GetProtocol: &core.ChallengeProtocol{
			ChallengeParam:      ChallengeParam,
			ResponseContentType: "text/plain",
		},
	}
}
