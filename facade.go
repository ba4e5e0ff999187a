package receivers

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-receivers/adapters/gocommand"
	receiverscommand "github.com/goliatone/go-receivers/command"
	receiversquery "github.com/goliatone/go-receivers/query"
)

// CommandQueryService is the full mutating and read-only surface the facade
// wraps. The Kernel implements it.
type CommandQueryService interface {
	receiverscommand.MutatingService
	receiversquery.ReceiverReader
	receiversquery.ConfigurationReader
}

// Commands holds the go-command wrappers around the mutating surface.
type Commands struct {
	ReceiveEvent     *receiverscommand.ReceiveEventCommand
	RegisterReceiver *receiverscommand.RegisterReceiverCommand
	RotateSecretKeys *receiverscommand.RotateSecretKeysCommand
	PruneClaims      *receiverscommand.PruneClaimsCommand
}

// Queries holds the go-command query wrappers around the read surface.
type Queries struct {
	GetReceiver        *receiversquery.GetReceiverQuery
	ListReceivers      *receiversquery.ListReceiversQuery
	ListConfigurations *receiversquery.ListConfigurationsQuery
	HasSecretKeys      *receiversquery.HasSecretKeysQuery
}

// Facade exposes the kernel surface as registered commands and queries so
// hosts can drive it through the go-command dispatcher.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("receivers: command/query service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			ReceiveEvent:     receiverscommand.NewReceiveEventCommand(service),
			RegisterReceiver: receiverscommand.NewRegisterReceiverCommand(service),
			RotateSecretKeys: receiverscommand.NewRotateSecretKeysCommand(service),
			PruneClaims:      receiverscommand.NewPruneClaimsCommand(service),
		},
		queries: Queries{
			GetReceiver:        receiversquery.NewGetReceiverQuery(service),
			ListReceivers:      receiversquery.NewListReceiversQuery(service),
			ListConfigurations: receiversquery.NewListConfigurationsQuery(service),
			HasSecretKeys:      receiversquery.NewHasSecretKeysQuery(service),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// Subscribe registers every command and query with the registry adapter and
// subscribes them on the process dispatcher. On failure the already created
// subscriptions are released.
func (f *Facade) Subscribe(adapter *gocommand.RegistryAdapter) ([]commanddispatcher.Subscription, error) {
	if f == nil {
		return nil, fmt.Errorf("receivers: facade is nil")
	}
	if adapter == nil {
		return nil, fmt.Errorf("receivers: registry adapter is required")
	}

	subscriptions := make([]commanddispatcher.Subscription, 0, 8)
	release := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}
	track := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			release()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	sub, err := gocommand.RegisterAndSubscribe(adapter, f.commands.ReceiveEvent)
	if err := track(sub, err); err != nil {
		return nil, err
	}
	sub, err = gocommand.RegisterAndSubscribe(adapter, f.commands.RegisterReceiver)
	if err := track(sub, err); err != nil {
		return nil, err
	}
	sub, err = gocommand.RegisterAndSubscribe(adapter, f.commands.RotateSecretKeys)
	if err := track(sub, err); err != nil {
		return nil, err
	}
	sub, err = gocommand.RegisterAndSubscribe(adapter, f.commands.PruneClaims)
	if err := track(sub, err); err != nil {
		return nil, err
	}

	sub, err = gocommand.RegisterAndSubscribeQuery(adapter, f.queries.GetReceiver)
	if err := track(sub, err); err != nil {
		return nil, err
	}
	sub, err = gocommand.RegisterAndSubscribeQuery(adapter, f.queries.ListReceivers)
	if err := track(sub, err); err != nil {
		return nil, err
	}
	sub, err = gocommand.RegisterAndSubscribeQuery(adapter, f.queries.ListConfigurations)
	if err := track(sub, err); err != nil {
		return nil, err
	}
	sub, err = gocommand.RegisterAndSubscribeQuery(adapter, f.queries.HasSecretKeys)
	if err := track(sub, err); err != nil {
		return nil, err
	}

	return subscriptions, nil
}

var _ CommandQueryService = (*Kernel)(nil)
