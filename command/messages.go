package command

import (
	"strings"

	"github.com/goliatone/go-receivers/core"
)

const (
	TypeReceiveEvent     = "receivers.command.event.receive"
	TypeRegisterReceiver = "receivers.command.receiver.register"
	TypeRotateSecretKeys = "receivers.command.secrets.rotate"
	TypePruneClaims      = "receivers.command.claims.prune"
)

type ReceiveEventMessage struct {
	Request core.InboundRequest
	Route   core.RouteContext
}

func (ReceiveEventMessage) Type() string { return TypeReceiveEvent }

func (m ReceiveEventMessage) Validate() error {
	if strings.TrimSpace(m.Request.ReceiverName) == "" && strings.TrimSpace(m.Route.ReceiverName) == "" {
		return commandValidationError("receiver", "receiver name is required")
	}
	if strings.TrimSpace(m.Request.Method) == "" {
		return commandValidationError("method", "request method is required")
	}
	return nil
}

type RegisterReceiverMessage struct {
	Metadata core.ReceiverMetadata
}

func (RegisterReceiverMessage) Type() string { return TypeRegisterReceiver }

func (m RegisterReceiverMessage) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid receiver descriptor")
	}
	return nil
}

type RotateSecretKeysMessage struct {
	ReceiverName    string
	ConfigurationID string
	Keys            core.SecretKeySet
}

func (RotateSecretKeysMessage) Type() string { return TypeRotateSecretKeys }

func (m RotateSecretKeysMessage) Validate() error {
	if strings.TrimSpace(m.ReceiverName) == "" {
		return commandValidationError("receiver", "receiver name is required")
	}
	if m.Keys.Empty() {
		return commandValidationError("keys", "at least one secret key is required")
	}
	return nil
}

type PruneClaimsMessage struct{}

func (PruneClaimsMessage) Type() string { return TypePruneClaims }

func (PruneClaimsMessage) Validate() error { return nil }
