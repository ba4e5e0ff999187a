package receivers

import (
	"context"
	"testing"

	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/route"
	"github.com/goliatone/go-receivers/secrets"
)

func TestNew_RequiresSecretSource(t *testing.T) {
	if _, err := New(DefaultConfig()); err == nil {
		t.Fatalf("expected missing secret source to fail")
	}
}

func TestNew_RegistersBuiltinReceivers(t *testing.T) {
	kernel := newTestKernel(t, nil)

	for _, name := range []string{"github", "stripe", "shopify", "dropbox", "devkit"} {
		if !kernel.Registry().Has(name) {
			t.Fatalf("expected builtin receiver %q", name)
		}
	}
}

func TestNew_WithoutBuiltinReceivers(t *testing.T) {
	kernel := newTestKernel(t, nil, WithoutBuiltinReceivers())

	if len(kernel.Registry().List()) != 0 {
		t.Fatalf("expected empty registry")
	}
	if err := kernel.RegisterReceiver(context.Background(), DevkitReceiver()); err != nil {
		t.Fatalf("register receiver: %v", err)
	}
	if !kernel.Registry().Has("devkit") {
		t.Fatalf("expected registered receiver")
	}
}

func TestKernel_RouteContextAnswersExistence(t *testing.T) {
	kernel := newTestKernel(t, nil)

	ctx := kernel.RouteContext(route.Values{
		route.KeyReceiverName: "github",
		route.KeyEventName:    "push",
	})
	if !ctx.ReceiverExists {
		t.Fatalf("expected registry to answer existence")
	}
	if ctx.ReceiverName != "github" {
		t.Fatalf("expected receiver name, got %q", ctx.ReceiverName)
	}
	if len(ctx.Events) != 1 || ctx.Events[0] != "push" {
		t.Fatalf("expected event from route values, got %#v", ctx.Events)
	}

	ctx = kernel.RouteContext(route.Values{route.KeyReceiverName: "unknown"})
	if ctx.ReceiverExists {
		t.Fatalf("expected unknown receiver to not exist")
	}

	ctx = kernel.RouteContext(route.Values{
		route.KeyReceiverName:   "github",
		route.KeyReceiverExists: false,
	})
	if ctx.ReceiverExists {
		t.Fatalf("expected explicit route value to win over registry")
	}
}

func TestKernel_ReceiveEventEndToEnd(t *testing.T) {
	handler := &recordingKernelHandler{receiver: "devkit"}
	kernel := newTestKernel(t, map[string]string{
		"receivers.devkit.secretKey.default": "s3cret",
	}, WithHandlers(handler))

	routeCtx := kernel.RouteContext(route.Values{route.KeyReceiverName: "devkit"})
	result, err := kernel.ReceiveEvent(context.Background(), core.InboundRequest{
		ReceiverName: "devkit",
		Method:       "POST",
		Query:        map[string]string{"code": "s3cret"},
		Body:         []byte(`{"ok":true}`),
	}, routeCtx)
	if err != nil {
		t.Fatalf("receive event: %v", err)
	}
	if !result.Accepted || result.StatusCode != 200 {
		t.Fatalf("expected accepted result, got %+v", result)
	}
	if handler.calls != 1 {
		t.Fatalf("expected handler invocation, got %d", handler.calls)
	}

	result, err = kernel.ReceiveEvent(context.Background(), core.InboundRequest{
		ReceiverName: "devkit",
		Method:       "POST",
		Query:        map[string]string{"code": "wrong"},
	}, routeCtx)
	if err != nil {
		t.Fatalf("receive event with bad code: %v", err)
	}
	if result.Accepted || result.StatusCode != 401 {
		t.Fatalf("expected rejected result, got %+v", result)
	}
	if handler.calls != 1 {
		t.Fatalf("expected rejected delivery to skip handler")
	}
}

func TestKernel_ReceiveEventRecordsMetrics(t *testing.T) {
	recorder := &capturingMetricsRecorder{}
	kernel := newTestKernel(t, map[string]string{
		"receivers.devkit.secretKey.default": "s3cret",
	}, WithMetricsRecorder(recorder))

	routeCtx := kernel.RouteContext(route.Values{route.KeyReceiverName: "devkit"})
	if _, err := kernel.ReceiveEvent(context.Background(), core.InboundRequest{
		ReceiverName: "devkit",
		Method:       "POST",
		Query:        map[string]string{"code": "s3cret"},
	}, routeCtx); err != nil {
		t.Fatalf("receive event: %v", err)
	}
	if _, err := kernel.ReceiveEvent(context.Background(), core.InboundRequest{
		ReceiverName: "devkit",
		Method:       "POST",
		Query:        map[string]string{"code": "wrong"},
	}, routeCtx); err != nil {
		t.Fatalf("receive event with bad code: %v", err)
	}

	if len(recorder.counters) != 2 {
		t.Fatalf("expected two delivery counters, got %d", len(recorder.counters))
	}
	if recorder.counters[0].name != "receivers.inbound.deliveries" {
		t.Fatalf("unexpected counter name %q", recorder.counters[0].name)
	}
	if recorder.counters[0].tags["receiver"] != "devkit" {
		t.Fatalf("expected receiver tag, got %+v", recorder.counters[0].tags)
	}
	if recorder.counters[0].tags["outcome"] != "accepted" {
		t.Fatalf("expected accepted outcome, got %+v", recorder.counters[0].tags)
	}
	if recorder.counters[1].tags["outcome"] != "rejected" {
		t.Fatalf("expected rejected outcome, got %+v", recorder.counters[1].tags)
	}
	if len(recorder.histograms) != 2 {
		t.Fatalf("expected duration observations, got %d", len(recorder.histograms))
	}
	if recorder.histograms[0].name != "receivers.inbound.duration_ms" {
		t.Fatalf("unexpected histogram name %q", recorder.histograms[0].name)
	}
}

func TestKernel_RotateSecretKeys(t *testing.T) {
	kernel := newTestKernel(t, map[string]string{
		"receivers.devkit.secretKey.default": "s3cret",
	})
	err := kernel.RotateSecretKeys(context.Background(), "devkit", "default", core.SecretKeySet{"next"})
	if err == nil {
		t.Fatalf("expected config lookup to refuse rotation")
	}

	rotator := &rotatingResolver{}
	kernel = newTestKernel(t, nil, WithSecretResolver(rotator))
	if err := kernel.RotateSecretKeys(context.Background(), "devkit", "default", core.SecretKeySet{"next"}); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotator.rotateCalls != 1 {
		t.Fatalf("expected rotation delegation, got %d", rotator.rotateCalls)
	}
}

func TestKernel_PruneClaims(t *testing.T) {
	kernel := newTestKernel(t, nil)

	pruned, err := kernel.PruneClaims(context.Background())
	if err != nil {
		t.Fatalf("prune claims: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("expected no expired claims, got %d", pruned)
	}
}

func TestSetup_LayersConfiguration(t *testing.T) {
	provider := core.NewCfgxConfigProvider(stubRawLoader{values: map[string]any{
		"lookup": map[string]any{"key_prefix": "hooks"},
	}})

	kernel, err := Setup(Config{},
		WithConfigProvider(provider),
		WithConfigSource(secrets.NewStaticSource(nil)),
	)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg := kernel.Config()
	if cfg.Lookup.KeyPrefix != "hooks" {
		t.Fatalf("expected loaded key prefix, got %q", cfg.Lookup.KeyPrefix)
	}
	if cfg.ServiceName != "receivers" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
}

func newTestKernel(t *testing.T, config map[string]string, opts ...Option) *Kernel {
	t.Helper()
	opts = append([]Option{WithConfigSource(secrets.NewStaticSource(config))}, opts...)
	kernel, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("new kernel: %v", err)
	}
	return kernel
}

type stubRawLoader struct {
	values map[string]any
}

func (l stubRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return l.values, nil
}

type recordingKernelHandler struct {
	receiver string
	calls    int
}

func (h *recordingKernelHandler) Receiver() string {
	return h.receiver
}

func (h *recordingKernelHandler) Handle(_ context.Context, _ core.InboundRequest, routeCtx core.RouteContext) (core.InboundResult, error) {
	h.calls++
	return core.InboundResult{Accepted: true, StatusCode: 200, Events: routeCtx.Events}, nil
}

type capturedMetric struct {
	name string
	tags map[string]string
}

type capturingMetricsRecorder struct {
	counters   []capturedMetric
	histograms []capturedMetric
}

func (r *capturingMetricsRecorder) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	r.counters = append(r.counters, capturedMetric{name: name, tags: tags})
}

func (r *capturingMetricsRecorder) ObserveHistogram(_ context.Context, name string, _ float64, tags map[string]string) {
	r.histograms = append(r.histograms, capturedMetric{name: name, tags: tags})
}

type rotatingResolver struct {
	rotateCalls int
}

func (r *rotatingResolver) SecretKeys(context.Context, string, string) (core.SecretKeySet, bool, error) {
	return nil, false, nil
}

func (r *rotatingResolver) HasSecretKeys(context.Context, string) (bool, error) {
	return false, nil
}

func (r *rotatingResolver) RotateSecretKeys(context.Context, string, string, core.SecretKeySet) error {
	r.rotateCalls++
	return nil
}
