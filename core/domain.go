package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidReceiverName      = errors.New("core: invalid receiver name")
	ErrInvalidBodyType          = errors.New("core: invalid body type")
	ErrInvalidStrategy          = errors.New("core: invalid verification strategy")
	ErrConflictingStrategies    = errors.New("core: static code and body signature are mutually exclusive")
	ErrMissingSignatureScheme   = errors.New("core: signature scheme is required for body-signature receivers")
	ErrMissingChallengeProtocol = errors.New("core: challenge protocol is required for short-circuit GET receivers")
)

// DefaultConfigurationID is substituted when an inbound request does not
// carry a configuration id, so single-tenant deployments work without one.
const DefaultConfigurationID = "default"

type BodyType string

const (
	BodyTypeUnspecified BodyType = ""
	BodyTypeJSON        BodyType = "json"
	BodyTypeXML         BodyType = "xml"
	BodyTypeForm        BodyType = "form"
)

func (t BodyType) Valid() bool {
	switch t {
	case BodyTypeUnspecified, BodyTypeJSON, BodyTypeXML, BodyTypeForm:
		return true
	default:
		return false
	}
}

// VerificationStrategy tags how a receiver proves request authenticity.
// A receiver uses either a static shared code in the query string or a
// cryptographic signature over the body, never both.
type VerificationStrategy string

const (
	StrategyNone          VerificationStrategy = "none"
	StrategyStaticCode    VerificationStrategy = "static_code"
	StrategyBodySignature VerificationStrategy = "body_signature"
)

func (s VerificationStrategy) Valid() bool {
	switch s {
	case StrategyNone, StrategyStaticCode, StrategyBodySignature:
		return true
	default:
		return false
	}
}

type SignatureEncoding string

const (
	SignatureEncodingHex    SignatureEncoding = "hex"
	SignatureEncodingBase64 SignatureEncoding = "base64"
)

type SignatureAlgorithm string

const (
	SignatureAlgorithmSHA1   SignatureAlgorithm = "sha1"
	SignatureAlgorithmSHA256 SignatureAlgorithm = "sha256"
	SignatureAlgorithmSHA512 SignatureAlgorithm = "sha512"
)

// SignatureHeaderParser extracts candidate signature values from a raw
// header. Receivers with structured headers (e.g. comma-separated
// key=value pairs) install their own parser; the default strips the
// scheme prefix and returns the remainder as the single candidate.
type SignatureHeaderParser func(value string) ([]string, error)

// SignatureScheme declares the keyed-hash contract of a body-signature
// receiver: which header carries the signature, how the digest is encoded,
// and which hash function keys the HMAC.
type SignatureScheme struct {
	Header    string
	Prefix    string
	Encoding  SignatureEncoding
	Algorithm SignatureAlgorithm
	Parser    SignatureHeaderParser
}

func (s SignatureScheme) Validate() error {
	if strings.TrimSpace(s.Header) == "" {
		return fmt.Errorf("%w: signature header name is empty", ErrMissingSignatureScheme)
	}
	switch s.Encoding {
	case SignatureEncodingHex, SignatureEncodingBase64:
	default:
		return fmt.Errorf("%w: unsupported encoding %q", ErrMissingSignatureScheme, s.Encoding)
	}
	switch s.Algorithm {
	case SignatureAlgorithmSHA1, SignatureAlgorithmSHA256, SignatureAlgorithmSHA512:
	default:
		return fmt.Errorf("%w: unsupported algorithm %q", ErrMissingSignatureScheme, s.Algorithm)
	}
	return nil
}

// ChallengeProtocol describes a receiver-defined GET handshake answered
// without verification or dispatch: the value of the challenge query
// parameter is echoed back verbatim.
type ChallengeProtocol struct {
	ChallengeParam      string
	ResponseContentType string
}

// ReceiverMetadata is the immutable per-receiver descriptor registered at
// startup. Exactly one descriptor exists per receiver name.
type ReceiverMetadata struct {
	Name                    string
	BodyType                BodyType
	Strategy                VerificationStrategy
	Signature               *SignatureScheme
	ShortCircuitGetRequests bool
	GetProtocol             *ChallengeProtocol
}

// VerifyCodeParameter reports whether this receiver authenticates with a
// static shared code in the query string instead of a body signature.
func (m ReceiverMetadata) VerifyCodeParameter() bool {
	return m.Strategy == StrategyStaticCode
}

func (m ReceiverMetadata) Validate() error {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidReceiverName)
	}
	if name != strings.ToLower(name) {
		return fmt.Errorf("%w: %q must be lowercase", ErrInvalidReceiverName, m.Name)
	}
	if !m.BodyType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBodyType, m.BodyType)
	}
	if !m.Strategy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, m.Strategy)
	}
	if m.Strategy == StrategyStaticCode && m.Signature != nil {
		return fmt.Errorf("%w: receiver %q", ErrConflictingStrategies, name)
	}
	if m.Strategy == StrategyBodySignature {
		if m.Signature == nil {
			return fmt.Errorf("%w: receiver %q", ErrMissingSignatureScheme, name)
		}
		if err := m.Signature.Validate(); err != nil {
			return err
		}
	}
	if m.ShortCircuitGetRequests {
		if m.GetProtocol == nil || strings.TrimSpace(m.GetProtocol.ChallengeParam) == "" {
			return fmt.Errorf("%w: receiver %q", ErrMissingChallengeProtocol, name)
		}
	}
	return nil
}

// ReceiverConfigKey identifies one secret configuration instance of a
// receiver type. Multiple ids per receiver support multi-tenant setups
// sharing one receiver implementation.
type ReceiverConfigKey struct {
	ReceiverName    string
	ConfigurationID string
}

// Normalize lowercases the receiver name and substitutes the default
// configuration id when none is given.
func (k ReceiverConfigKey) Normalize() ReceiverConfigKey {
	name := strings.TrimSpace(strings.ToLower(k.ReceiverName))
	id := strings.TrimSpace(strings.ToLower(k.ConfigurationID))
	if id == "" {
		id = DefaultConfigurationID
	}
	return ReceiverConfigKey{ReceiverName: name, ConfigurationID: id}
}

// SecretKeySet holds every secret currently valid for one receiver
// configuration. More than one entry means a rotation is in flight:
// verification succeeds when any entry matches.
type SecretKeySet []string

func (s SecretKeySet) Empty() bool {
	for _, key := range s {
		if strings.TrimSpace(key) != "" {
			return false
		}
	}
	return true
}

// RouteContext is the strongly-typed view of one matched inbound request,
// built fresh per request from the host router's route values.
type RouteContext struct {
	ReceiverName    string
	ConfigurationID string
	Events          []string
	ReceiverExists  bool
}

// RejectReason classifies why verification refused a request. NotConfigured
// is deliberately distinct from the invalid-code/invalid-signature outcomes
// so callers can tell "nobody set this up" from a forgery attempt.
type RejectReason string

const (
	RejectReasonNone             RejectReason = ""
	RejectReasonNotFound         RejectReason = "receiver_not_found"
	RejectReasonNotConfigured    RejectReason = "receiver_not_configured"
	RejectReasonInvalidCode      RejectReason = "invalid_code"
	RejectReasonInvalidSignature RejectReason = "invalid_signature"
	RejectReasonCancelled        RejectReason = "cancelled"
)

// Verdict is the terminal state of one verification attempt.
type Verdict struct {
	Accepted   bool
	Reason     RejectReason
	StatusCode int
	Metadata   map[string]any
}

func Accept() Verdict {
	return Verdict{Accepted: true, StatusCode: 200}
}

func Reject(reason RejectReason) Verdict {
	return Verdict{
		Accepted:   false,
		Reason:     reason,
		StatusCode: rejectStatus(reason),
	}
}

func rejectStatus(reason RejectReason) int {
	switch reason {
	case RejectReasonNotFound:
		return 404
	case RejectReasonInvalidCode, RejectReasonInvalidSignature:
		return 401
	default:
		return 400
	}
}

// InboundRequest is the transport-neutral shape of one webhook delivery
// after the host router matched it and the body was buffered.
type InboundRequest struct {
	ReceiverName    string
	ConfigurationID string
	Method          string
	Headers         map[string]string
	Query           map[string]string
	Body            []byte
	Metadata        map[string]any
}

// InboundResult is what the host dispatcher hands back to its HTTP layer.
type InboundResult struct {
	Accepted   bool
	StatusCode int
	Events     []string
	Metadata   map[string]any
}
