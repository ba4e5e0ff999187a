package receivers

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/inbound"
	"github.com/goliatone/go-receivers/route"
	"github.com/goliatone/go-receivers/secrets"
	"github.com/goliatone/go-receivers/verify"
)

type Config = core.Config

type ReceiverMetadata = core.ReceiverMetadata
type RouteContext = core.RouteContext
type InboundRequest = core.InboundRequest
type InboundResult = core.InboundResult
type Verdict = core.Verdict
type SecretKeySet = core.SecretKeySet

type ConfigSource = core.ConfigSource
type SecretResolver = core.SecretResolver
type MetadataSource = core.MetadataSource
type Verifier = core.Verifier
type InboundHandler = core.InboundHandler
type ClaimStore = core.ClaimStore

// SecretKeyRotator is the optional write side of a SecretResolver. Resolvers
// backed by mutable storage implement it; config-file lookups do not.
type SecretKeyRotator interface {
	RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error
}

// ClaimPruner is the optional maintenance side of a ClaimStore.
type ClaimPruner interface {
	PruneExpired(ctx context.Context) (int, error)
}

// ConfigurationLister enumerates the configuration ids a resolver holds
// keys for. Database-backed resolvers implement it.
type ConfigurationLister interface {
	Configurations(ctx context.Context, receiverName string) ([]string, error)
}

type Option func(*kernelOptions)

type kernelOptions struct {
	logger          glog.Logger
	loggerProvider  glog.LoggerProvider
	configSource    core.ConfigSource
	secretResolver  core.SecretResolver
	claimStore      core.ClaimStore
	extractKey      inbound.DeliveryKeyExtractor
	receivers       []core.ReceiverMetadata
	handlers        []core.InboundHandler
	configProvider  core.ConfigProvider
	optionsResolver core.OptionsResolver
	metricsRecorder core.MetricsRecorder
	skipBuiltin     bool
}

func WithLogger(logger glog.Logger) Option {
	return func(o *kernelOptions) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(o *kernelOptions) {
		o.loggerProvider = provider
	}
}

// WithConfigSource installs the hierarchical config tree that secret key
// lookups read from. Ignored when WithSecretResolver is also set.
func WithConfigSource(source core.ConfigSource) Option {
	return func(o *kernelOptions) {
		o.configSource = source
	}
}

func WithSecretResolver(resolver core.SecretResolver) Option {
	return func(o *kernelOptions) {
		o.secretResolver = resolver
	}
}

func WithClaimStore(store core.ClaimStore) Option {
	return func(o *kernelOptions) {
		o.claimStore = store
	}
}

func WithDeliveryKeyExtractor(extract inbound.DeliveryKeyExtractor) Option {
	return func(o *kernelOptions) {
		o.extractKey = extract
	}
}

// WithReceivers registers additional receiver descriptors on top of the
// builtin set.
func WithReceivers(metadata ...core.ReceiverMetadata) Option {
	return func(o *kernelOptions) {
		o.receivers = append(o.receivers, metadata...)
	}
}

func WithHandlers(handlers ...core.InboundHandler) Option {
	return func(o *kernelOptions) {
		o.handlers = append(o.handlers, handlers...)
	}
}

// WithoutBuiltinReceivers starts the registry empty so the host controls
// every registered descriptor.
func WithoutBuiltinReceivers() Option {
	return func(o *kernelOptions) {
		o.skipBuiltin = true
	}
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(o *kernelOptions) {
		o.configProvider = provider
	}
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(o *kernelOptions) {
		o.optionsResolver = resolver
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(o *kernelOptions) {
		o.metricsRecorder = recorder
	}
}

// Kernel wires the receiver registry, secret resolution, verification, and
// the inbound dispatch pipeline behind one composition root.
type Kernel struct {
	config     Config
	logger     glog.Logger
	provider   glog.LoggerProvider
	registry   *core.MetadataRegistry
	secrets    core.SecretResolver
	verifier   *verify.Verifier
	claims     core.ClaimStore
	dispatcher *inbound.Dispatcher
	metrics    core.MetricsRecorder
}

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func New(cfg Config, opts ...Option) (*Kernel, error) {
	options := kernelOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, logger := glog.Resolve("receivers", options.loggerProvider, options.logger)

	registry := core.NewMetadataRegistry()
	if !options.skipBuiltin {
		for _, metadata := range BuiltinReceivers() {
			if err := registry.Register(metadata); err != nil {
				return nil, err
			}
		}
	}
	for _, metadata := range options.receivers {
		if err := registry.Register(metadata); err != nil {
			return nil, err
		}
	}

	resolver := options.secretResolver
	if resolver == nil {
		if options.configSource == nil {
			return nil, fmt.Errorf("receivers: a secret resolver or config source is required")
		}
		lookup, err := secrets.NewLookup(options.configSource,
			secrets.WithKeyPrefix(cfg.Lookup.KeyPrefix),
			secrets.WithDefaultConfigurationID(cfg.Lookup.DefaultID),
			secrets.WithSecretKeyNode(cfg.Lookup.SecretKeyNode),
			secrets.WithKeyListDelimiter(cfg.Lookup.KeyListDelimiter),
		)
		if err != nil {
			return nil, err
		}
		resolver = lookup
	}

	verifier, err := verify.New(registry, resolver, verify.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	claims := options.claimStore
	if claims == nil {
		claims = inbound.NewInMemoryClaimStore()
	}

	dispatcher := inbound.NewDispatcher(verifier, claims)
	if options.extractKey != nil {
		dispatcher.ExtractKey = options.extractKey
	}
	for _, handler := range options.handlers {
		if err := dispatcher.Register(handler); err != nil {
			return nil, err
		}
	}

	metrics := core.SafeMetrics(options.metricsRecorder)

	return &Kernel{
		config:     cfg,
		logger:     logger,
		provider:   provider,
		registry:   registry,
		secrets:    resolver,
		verifier:   verifier,
		claims:     claims,
		dispatcher: dispatcher,
		metrics:    metrics,
	}, nil
}

// Setup resolves configuration through the provider and options layering
// before constructing the kernel. Runtime cfg fields win over loaded config,
// which wins over defaults.
func Setup(cfg Config, opts ...Option) (*Kernel, error) {
	options := kernelOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	defaults := DefaultConfig()
	loaded := defaults
	if options.configProvider != nil {
		resolved, err := options.configProvider.Load(context.Background(), defaults)
		if err != nil {
			return nil, err
		}
		loaded = resolved
	}

	resolver := options.optionsResolver
	if resolver == nil {
		resolver = core.GoOptionsResolver{}
	}
	merged, err := resolver.Resolve(defaults, loaded, cfg)
	if err != nil {
		return nil, err
	}
	return New(merged, opts...)
}

func (k *Kernel) Config() Config {
	if k == nil {
		return Config{}
	}
	return k.config
}

func (k *Kernel) Registry() *core.MetadataRegistry {
	if k == nil {
		return nil
	}
	return k.registry
}

func (k *Kernel) Verifier() core.Verifier {
	if k == nil {
		return nil
	}
	return k.verifier
}

func (k *Kernel) Dispatcher() *inbound.Dispatcher {
	if k == nil {
		return nil
	}
	return k.dispatcher
}

func (k *Kernel) SecretResolver() core.SecretResolver {
	if k == nil {
		return nil
	}
	return k.secrets
}

func (k *Kernel) RegisterHandler(handler core.InboundHandler) error {
	if k == nil {
		return fmt.Errorf("receivers: kernel is nil")
	}
	return k.dispatcher.Register(handler)
}

// RouteContext builds the routing view of matched path values. Existence is
// answered by the registry unless the route explicitly carries it.
func (k *Kernel) RouteContext(values route.Values) core.RouteContext {
	ctx := route.Context(values)
	if k == nil {
		return ctx
	}
	if _, supplied := values[route.KeyReceiverExists]; !supplied {
		ctx.ReceiverExists = k.registry.Has(ctx.ReceiverName)
	}
	return ctx
}

func (k *Kernel) ReceiveEvent(ctx context.Context, req core.InboundRequest, routeCtx core.RouteContext) (core.InboundResult, error) {
	if k == nil {
		return core.InboundResult{}, fmt.Errorf("receivers: kernel is nil")
	}
	startedAt := time.Now()
	result, err := k.dispatcher.Dispatch(ctx, req, routeCtx)
	tags := map[string]string{
		"receiver": strings.TrimSpace(strings.ToLower(firstNonEmptyString(req.ReceiverName, routeCtx.ReceiverName))),
		"outcome":  deliveryOutcome(result, err),
	}
	k.metrics.IncCounter(ctx, "receivers.inbound.deliveries", 1, tags)
	k.metrics.ObserveHistogram(ctx, "receivers.inbound.duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
	return result, err
}

func deliveryOutcome(result core.InboundResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case !result.Accepted:
		return "rejected"
	default:
		return "accepted"
	}
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func (k *Kernel) RegisterReceiver(_ context.Context, metadata core.ReceiverMetadata) error {
	if k == nil {
		return fmt.Errorf("receivers: kernel is nil")
	}
	return k.registry.Register(metadata)
}

func (k *Kernel) RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error {
	if k == nil {
		return fmt.Errorf("receivers: kernel is nil")
	}
	rotator, ok := k.secrets.(SecretKeyRotator)
	if !ok {
		return fmt.Errorf("receivers: secret resolver does not support rotation")
	}
	return rotator.RotateSecretKeys(ctx, receiverName, configurationID, keys)
}

func (k *Kernel) GetReceiver(_ context.Context, receiverName string) (core.ReceiverMetadata, error) {
	if k == nil {
		return core.ReceiverMetadata{}, fmt.Errorf("receivers: kernel is nil")
	}
	return k.registry.Metadata(receiverName)
}

func (k *Kernel) ListReceivers(context.Context) ([]core.ReceiverMetadata, error) {
	if k == nil {
		return nil, fmt.Errorf("receivers: kernel is nil")
	}
	return k.registry.List(), nil
}

// ListConfigurations enumerates configuration ids when the secret resolver
// can; config-file lookups cannot and report so.
func (k *Kernel) ListConfigurations(ctx context.Context, receiverName string) ([]string, error) {
	if k == nil {
		return nil, fmt.Errorf("receivers: kernel is nil")
	}
	lister, ok := k.secrets.(ConfigurationLister)
	if !ok {
		return nil, fmt.Errorf("receivers: secret resolver does not enumerate configurations")
	}
	return lister.Configurations(ctx, receiverName)
}

func (k *Kernel) HasSecretKeys(ctx context.Context, receiverName string) (bool, error) {
	if k == nil {
		return false, fmt.Errorf("receivers: kernel is nil")
	}
	return k.secrets.HasSecretKeys(ctx, receiverName)
}

func (k *Kernel) PruneClaims(ctx context.Context) (int, error) {
	if k == nil {
		return 0, fmt.Errorf("receivers: kernel is nil")
	}
	pruner, ok := k.claims.(ClaimPruner)
	if !ok {
		return 0, nil
	}
	return pruner.PruneExpired(ctx)
}
