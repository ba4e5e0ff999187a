package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-receivers/core"
)

// MutatingService is the host-facing surface the command handlers drive.
// The kernel's facade satisfies it; tests substitute stubs.
type MutatingService interface {
	ReceiveEvent(ctx context.Context, req core.InboundRequest, route core.RouteContext) (core.InboundResult, error)
	RegisterReceiver(ctx context.Context, meta core.ReceiverMetadata) error
	RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error
	PruneClaims(ctx context.Context) (int, error)
}

type ReceiveEventCommand struct {
	service MutatingService
}

func NewReceiveEventCommand(service MutatingService) *ReceiveEventCommand {
	return &ReceiveEventCommand{service: service}
}

func (c *ReceiveEventCommand) Execute(ctx context.Context, msg ReceiveEventMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: receive event service is required")
	}
	out, err := c.service.ReceiveEvent(ctx, msg.Request, msg.Route)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterReceiverCommand struct {
	service MutatingService
}

func NewRegisterReceiverCommand(service MutatingService) *RegisterReceiverCommand {
	return &RegisterReceiverCommand{service: service}
}

func (c *RegisterReceiverCommand) Execute(ctx context.Context, msg RegisterReceiverMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register receiver service is required")
	}
	return c.service.RegisterReceiver(ctx, msg.Metadata)
}

type RotateSecretKeysCommand struct {
	service MutatingService
}

func NewRotateSecretKeysCommand(service MutatingService) *RotateSecretKeysCommand {
	return &RotateSecretKeysCommand{service: service}
}

func (c *RotateSecretKeysCommand) Execute(ctx context.Context, msg RotateSecretKeysMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: rotate secret keys service is required")
	}
	return c.service.RotateSecretKeys(ctx, msg.ReceiverName, msg.ConfigurationID, msg.Keys)
}

type PruneClaimsCommand struct {
	service MutatingService
}

func NewPruneClaimsCommand(service MutatingService) *PruneClaimsCommand {
	return &PruneClaimsCommand{service: service}
}

func (c *PruneClaimsCommand) Execute(ctx context.Context, msg PruneClaimsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: prune claims service is required")
	}
	pruned, err := c.service.PruneClaims(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, pruned)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
