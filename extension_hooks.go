package receivers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-receivers/command"
	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/inbound"
)

// ReceiverPack is a named group of receiver descriptors contributed by a
// host extension.
type ReceiverPack struct {
	Name      string
	Receivers []core.ReceiverMetadata
}

// HandlerPack is a named group of inbound handlers contributed by a host
// extension.
type HandlerPack struct {
	Name     string
	Handlers []core.InboundHandler
}

type CommandBundleFactory func(service command.MutatingService) (any, error)

// ExtensionHooks collects receiver descriptors, inbound handlers, and
// command bundles from host extensions before the kernel is assembled.
type ExtensionHooks struct {
	mu sync.RWMutex

	receiverPacks map[string]ReceiverPack
	handlerPacks  map[string]HandlerPack
	bundles       map[string]CommandBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		receiverPacks: map[string]ReceiverPack{},
		handlerPacks:  map[string]HandlerPack{},
		bundles:       map[string]CommandBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterReceiverPack(pack ReceiverPack) error {
	if h == nil {
		return fmt.Errorf("receivers: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("receivers: receiver pack name is required")
	}
	if len(pack.Receivers) == 0 {
		return fmt.Errorf("receivers: receiver pack %q has no receivers", name)
	}

	normalized := ReceiverPack{
		Name:      name,
		Receivers: append([]core.ReceiverMetadata(nil), pack.Receivers...),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.receiverPacks[name]; exists {
		return fmt.Errorf("receivers: receiver pack %q already registered", name)
	}
	h.receiverPacks[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterHandlerPack(pack HandlerPack) error {
	if h == nil {
		return fmt.Errorf("receivers: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("receivers: handler pack name is required")
	}
	if len(pack.Handlers) == 0 {
		return fmt.Errorf("receivers: handler pack %q has no handlers", name)
	}

	normalized := HandlerPack{
		Name:     name,
		Handlers: append([]core.InboundHandler(nil), pack.Handlers...),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.handlerPacks[name]; exists {
		return fmt.Errorf("receivers: handler pack %q already registered", name)
	}
	h.handlerPacks[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterCommandBundle(name string, factory CommandBundleFactory) error {
	if h == nil {
		return fmt.Errorf("receivers: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("receivers: command bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("receivers: command bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("receivers: command bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// ApplyReceiverPacks registers every contributed descriptor on the registry
// in deterministic pack order.
func (h *ExtensionHooks) ApplyReceiverPacks(registry *core.MetadataRegistry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("receivers: registry is required")
	}

	for _, pack := range h.ReceiverPacks() {
		for _, metadata := range pack.Receivers {
			if err := registry.Register(metadata); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyHandlerPacks registers every contributed handler on the dispatcher
// in deterministic pack order.
func (h *ExtensionHooks) ApplyHandlerPacks(dispatcher *inbound.Dispatcher) error {
	if h == nil {
		return nil
	}
	if dispatcher == nil {
		return fmt.Errorf("receivers: dispatcher is required")
	}

	for _, pack := range h.HandlerPacks() {
		for _, handler := range pack.Handlers {
			if handler == nil {
				return fmt.Errorf("receivers: handler pack %q contains nil handler", pack.Name)
			}
			if err := dispatcher.Register(handler); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *ExtensionHooks) BuildCommandBundles(service command.MutatingService) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("receivers: mutating service is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	factories := make(map[string]CommandBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) ReceiverPacks() []ReceiverPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.receiverPacks))
	for name := range h.receiverPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ReceiverPack, 0, len(names))
	for _, name := range names {
		pack := h.receiverPacks[name]
		out = append(out, ReceiverPack{
			Name:      pack.Name,
			Receivers: append([]core.ReceiverMetadata(nil), pack.Receivers...),
		})
	}
	return out
}

func (h *ExtensionHooks) HandlerPacks() []HandlerPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.handlerPacks))
	for name := range h.handlerPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HandlerPack, 0, len(names))
	for _, name := range names {
		pack := h.handlerPacks[name]
		out = append(out, HandlerPack{
			Name:     pack.Name,
			Handlers: append([]core.InboundHandler(nil), pack.Handlers...),
		})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
