package verify

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-receivers/core"
)

// CodeParameter is the fixed query parameter carrying the shared code for
// static-code receivers.
const CodeParameter = "code"

// Metadata keys attached to accepted verdicts.
const (
	MetadataChallengeResponse    = "challenge_response"
	MetadataResponseContentType  = "response_content_type"
	MetadataShortCircuit         = "short_circuit"
	MetadataVerificationStrategy = "verification_strategy"
)

// Verifier runs the authenticity decision for inbound deliveries: resolve
// the receiver descriptor, answer GET handshakes, then check either the
// shared code or the body signature against every currently-valid key.
// Safe for concurrent use; all per-request state lives on the stack.
type Verifier struct {
	metadata core.MetadataSource
	secrets  core.SecretResolver
	logger   glog.Logger
}

type Option func(*Verifier)

func WithLogger(logger glog.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(v *Verifier) {
		if provider != nil {
			v.logger = glog.Ensure(provider.GetLogger("receivers.verify"))
		}
	}
}

// New builds a verifier over a receiver registry and a secret resolver.
func New(metadata core.MetadataSource, secrets core.SecretResolver, opts ...Option) (*Verifier, error) {
	if metadata == nil {
		return nil, verifyBadInput("metadata source is required", nil)
	}
	if secrets == nil {
		return nil, verifyBadInput("secret resolver is required", nil)
	}

	verifier := &Verifier{
		metadata: metadata,
		secrets:  secrets,
		logger:   glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(verifier)
		}
	}
	return verifier, nil
}

// Verify decides one request. Authenticity failures are verdicts, not
// errors; the error return is reserved for infrastructure faults such as a
// secret backend outage.
func (v *Verifier) Verify(ctx context.Context, req core.InboundRequest) (core.Verdict, error) {
	if v == nil {
		return core.Verdict{}, verifyInternal("verifier is not initialized", nil)
	}
	if err := ctx.Err(); err != nil {
		return core.Reject(core.RejectReasonCancelled), nil
	}

	key := core.ReceiverConfigKey{
		ReceiverName:    req.ReceiverName,
		ConfigurationID: req.ConfigurationID,
	}.Normalize()
	if key.ReceiverName == "" {
		return core.Verdict{}, verifyBadInput("receiver name is required", nil)
	}

	meta, err := v.metadata.Metadata(key.ReceiverName)
	if err != nil {
		v.logger.Debug("receiver not registered",
			"receiver", key.ReceiverName,
			"receiver_id", key.ConfigurationID,
		)
		return core.Reject(core.RejectReasonNotFound), nil
	}

	if meta.ShortCircuitGetRequests && strings.EqualFold(req.Method, "GET") {
		return v.answerChallenge(meta, req), nil
	}

	switch meta.Strategy {
	case core.StrategyNone:
		return acceptWithStrategy(meta.Strategy), nil
	case core.StrategyStaticCode:
		return v.verifyStaticCode(ctx, key, req)
	case core.StrategyBodySignature:
		return v.verifyBodySignature(ctx, key, meta, req)
	default:
		return core.Verdict{}, verifyInternal("receiver has an unknown verification strategy", nil)
	}
}

// answerChallenge echoes the protocol's challenge parameter back verbatim.
// No secret is consulted: the handshake proves endpoint liveness, not
// request authenticity.
func (v *Verifier) answerChallenge(meta core.ReceiverMetadata, req core.InboundRequest) core.Verdict {
	protocol := meta.GetProtocol
	challenge := ""
	contentType := "text/plain"
	if protocol != nil {
		challenge = req.Query[protocol.ChallengeParam]
		if strings.TrimSpace(protocol.ResponseContentType) != "" {
			contentType = protocol.ResponseContentType
		}
	}

	verdict := core.Accept()
	verdict.Metadata = map[string]any{
		MetadataShortCircuit:        true,
		MetadataChallengeResponse:   challenge,
		MetadataResponseContentType: contentType,
	}
	return verdict
}

func (v *Verifier) verifyStaticCode(ctx context.Context, key core.ReceiverConfigKey, req core.InboundRequest) (core.Verdict, error) {
	keys, found, err := v.resolveSecrets(ctx, key)
	if err != nil {
		return core.Verdict{}, err
	}
	if !found {
		return core.Reject(core.RejectReasonNotConfigured), nil
	}
	if err := ctx.Err(); err != nil {
		return core.Reject(core.RejectReasonCancelled), nil
	}

	presented := []byte(req.Query[CodeParameter])

	// Every key is compared even after a match so the timing profile does
	// not reveal key-set size or match position.
	matched := false
	for _, candidate := range keys {
		if subtle.ConstantTimeCompare(presented, []byte(candidate)) == 1 {
			matched = true
		}
	}
	if !matched {
		v.logger.Info("static code verification failed",
			"receiver", key.ReceiverName,
			"receiver_id", key.ConfigurationID,
		)
		return core.Reject(core.RejectReasonInvalidCode), nil
	}
	return acceptWithStrategy(core.StrategyStaticCode), nil
}

func (v *Verifier) verifyBodySignature(ctx context.Context, key core.ReceiverConfigKey, meta core.ReceiverMetadata, req core.InboundRequest) (core.Verdict, error) {
	scheme := meta.Signature
	if scheme == nil {
		return core.Verdict{}, verifyInternal("body-signature receiver is missing its signature scheme", nil)
	}

	keys, found, err := v.resolveSecrets(ctx, key)
	if err != nil {
		return core.Verdict{}, err
	}
	if !found {
		return core.Reject(core.RejectReasonNotConfigured), nil
	}

	header := headerValue(req.Headers, scheme.Header)
	if strings.TrimSpace(header) == "" {
		v.logger.Info("signature header missing",
			"receiver", key.ReceiverName,
			"receiver_id", key.ConfigurationID,
			"header", scheme.Header,
		)
		return core.Reject(core.RejectReasonInvalidSignature), nil
	}

	candidates, err := parseCandidates(*scheme, header)
	if err != nil || len(candidates) == 0 {
		return core.Reject(core.RejectReasonInvalidSignature), nil
	}
	if err := ctx.Err(); err != nil {
		return core.Reject(core.RejectReasonCancelled), nil
	}

	// Accumulate over every key/candidate pair without breaking out: a
	// rotated key set must not be distinguishable from a single key by
	// response timing.
	matched := false
	for _, secret := range keys {
		expected := computeHMAC(scheme.Algorithm, []byte(secret), req.Body)
		for _, candidate := range candidates {
			presented, decodeErr := decodeSignature(scheme.Encoding, candidate)
			if decodeErr != nil {
				continue
			}
			if hmac.Equal(expected, presented) {
				matched = true
			}
		}
	}
	if !matched {
		v.logger.Info("body signature verification failed",
			"receiver", key.ReceiverName,
			"receiver_id", key.ConfigurationID,
		)
		return core.Reject(core.RejectReasonInvalidSignature), nil
	}
	return acceptWithStrategy(core.StrategyBodySignature), nil
}

func (v *Verifier) resolveSecrets(ctx context.Context, key core.ReceiverConfigKey) (core.SecretKeySet, bool, error) {
	keys, found, err := v.secrets.SecretKeys(ctx, key.ReceiverName, key.ConfigurationID)
	if err != nil {
		return nil, false, verifyInternal("secret lookup failed", err)
	}
	if !found || keys.Empty() {
		v.logger.Debug("receiver has no secret keys",
			"receiver", key.ReceiverName,
			"receiver_id", key.ConfigurationID,
		)
		return nil, false, nil
	}
	return keys, true, nil
}

func acceptWithStrategy(strategy core.VerificationStrategy) core.Verdict {
	verdict := core.Accept()
	verdict.Metadata = map[string]any{
		MetadataVerificationStrategy: string(strategy),
	}
	return verdict
}

// parseCandidates turns a raw signature header into decodable digest
// strings. A receiver-installed parser wins; the default strips the scheme
// prefix and yields the remainder as the single candidate.
func parseCandidates(scheme core.SignatureScheme, header string) ([]string, error) {
	if scheme.Parser != nil {
		return scheme.Parser(header)
	}
	value := strings.TrimSpace(header)
	if scheme.Prefix != "" {
		if !strings.HasPrefix(value, scheme.Prefix) {
			return nil, nil
		}
		value = strings.TrimPrefix(value, scheme.Prefix)
	}
	if value == "" {
		return nil, nil
	}
	return []string{value}, nil
}

func decodeSignature(encoding core.SignatureEncoding, value string) ([]byte, error) {
	switch encoding {
	case core.SignatureEncodingBase64:
		return base64.StdEncoding.DecodeString(value)
	default:
		return hex.DecodeString(value)
	}
}

func computeHMAC(algorithm core.SignatureAlgorithm, secret, body []byte) []byte {
	var newHash func() hash.Hash
	switch algorithm {
	case core.SignatureAlgorithmSHA1:
		newHash = sha1.New
	case core.SignatureAlgorithmSHA512:
		newHash = sha512.New
	default:
		newHash = sha256.New
	}
	mac := hmac.New(newHash, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

func headerValue(headers map[string]string, name string) string {
	if len(headers) == 0 {
		return ""
	}
	if value, ok := headers[name]; ok {
		return value
	}
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

var _ core.Verifier = (*Verifier)(nil)
