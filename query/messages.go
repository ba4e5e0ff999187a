package query

import (
	"strings"
)

const (
	TypeGetReceiver        = "receivers.query.receiver.get"
	TypeListReceivers      = "receivers.query.receiver.list"
	TypeListConfigurations = "receivers.query.configurations.list"
	TypeHasSecretKeys      = "receivers.query.secrets.has"
)

type GetReceiverMessage struct {
	ReceiverName string
}

func (GetReceiverMessage) Type() string { return TypeGetReceiver }

func (m GetReceiverMessage) Validate() error {
	if strings.TrimSpace(m.ReceiverName) == "" {
		return queryValidationError("receiver_name", "receiver name is required")
	}
	return nil
}

type ListReceiversMessage struct{}

func (ListReceiversMessage) Type() string { return TypeListReceivers }

type ListConfigurationsMessage struct {
	ReceiverName string
}

func (ListConfigurationsMessage) Type() string { return TypeListConfigurations }

func (m ListConfigurationsMessage) Validate() error {
	if strings.TrimSpace(m.ReceiverName) == "" {
		return queryValidationError("receiver_name", "receiver name is required")
	}
	return nil
}

type HasSecretKeysMessage struct {
	ReceiverName string
}

func (HasSecretKeysMessage) Type() string { return TypeHasSecretKeys }

func (m HasSecretKeysMessage) Validate() error {
	if strings.TrimSpace(m.ReceiverName) == "" {
		return queryValidationError("receiver_name", "receiver name is required")
	}
	return nil
}
