package inbound

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/verify"
)

func TestDispatchRejectsWhenReceiverUnknown(t *testing.T) {
	dispatcher := NewDispatcher(acceptingVerifier{}, nil)

	result, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "github",
	}, core.RouteContext{ReceiverName: "github", ReceiverExists: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected rejection for unknown receiver")
	}
	if result.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", result.StatusCode)
	}
	if result.Metadata["reason"] != string(core.RejectReasonNotFound) {
		t.Fatalf("expected not-found reason metadata, got %v", result.Metadata)
	}
}

func TestDispatchSurfacesVerdictRejection(t *testing.T) {
	dispatcher := NewDispatcher(rejectingVerifier{reason: core.RejectReasonInvalidSignature}, nil)

	result, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "github",
	}, core.RouteContext{ReceiverName: "github", ReceiverExists: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if result.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", result.StatusCode)
	}
}

func TestDispatchAnswersShortCircuitWithoutHandler(t *testing.T) {
	verdict := core.Accept()
	verdict.Metadata = map[string]any{
		verify.MetadataShortCircuit:      true,
		verify.MetadataChallengeResponse: "abc123",
	}
	dispatcher := NewDispatcher(fixedVerifier{verdict: verdict}, nil)

	result, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "dropbox",
		Method:       "GET",
	}, core.RouteContext{ReceiverName: "dropbox", ReceiverExists: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Accepted {
		t.Fatal("expected handshake acceptance")
	}
	if result.Metadata[verify.MetadataChallengeResponse] != "abc123" {
		t.Fatalf("expected challenge metadata, got %v", result.Metadata)
	}
}

func TestDispatchInvokesHandlerAndMergesMetadata(t *testing.T) {
	dispatcher := NewDispatcher(acceptingVerifier{}, nil)
	handler := &recordingHandler{receiver: "github", result: core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Metadata:   map[string]any{"handled": true},
	}}
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}

	result, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "github",
	}, core.RouteContext{
		ReceiverName:   "github",
		ReceiverExists: true,
		Events:         []string{"push"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handler.calls != 1 {
		t.Fatalf("expected one handler call, got %d", handler.calls)
	}
	if result.Metadata["handled"] != true || result.Metadata["receiver"] != "github" {
		t.Fatalf("expected merged metadata, got %v", result.Metadata)
	}
	if len(result.Events) != 1 || result.Events[0] != "push" {
		t.Fatalf("expected route events to carry through, got %v", result.Events)
	}
	if result.Metadata["receiver_id"] != core.DefaultConfigurationID {
		t.Fatalf("expected default configuration id, got %v", result.Metadata["receiver_id"])
	}
}

func TestDispatchDedupesByDeliveryID(t *testing.T) {
	store := NewInMemoryClaimStore()
	store.Now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	dispatcher := NewDispatcher(acceptingVerifier{}, store)
	handler := &recordingHandler{receiver: "github", result: core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
	}}
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}

	req := core.InboundRequest{
		ReceiverName: "github",
		Headers:      map[string]string{"X-GitHub-Delivery": "dlv-1"},
	}
	route := core.RouteContext{ReceiverName: "github", ReceiverExists: true}

	if _, err := dispatcher.Dispatch(context.Background(), req, route); err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	result, err := dispatcher.Dispatch(context.Background(), req, route)
	if err != nil {
		t.Fatalf("second dispatch failed: %v", err)
	}
	if handler.calls != 1 {
		t.Fatalf("expected duplicate to be suppressed, handler ran %d times", handler.calls)
	}
	if result.Metadata["deduped"] != true {
		t.Fatalf("expected dedupe marker, got %v", result.Metadata)
	}
}

func TestDispatchMissingDeliveryIDSkipsDedupe(t *testing.T) {
	store := NewInMemoryClaimStore()
	dispatcher := NewDispatcher(acceptingVerifier{}, store)
	handler := &recordingHandler{receiver: "stripe", result: core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
	}}
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}

	req := core.InboundRequest{ReceiverName: "stripe"}
	route := core.RouteContext{ReceiverName: "stripe", ReceiverExists: true}

	for i := 0; i < 2; i++ {
		if _, err := dispatcher.Dispatch(context.Background(), req, route); err != nil {
			t.Fatalf("dispatch %d failed: %v", i, err)
		}
	}
	if handler.calls != 2 {
		t.Fatalf("expected both deliveries to run without an id, got %d calls", handler.calls)
	}
}

func TestDispatchHandlerFailureReleasesClaim(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewInMemoryClaimStore()
	store.Now = func() time.Time { return now }
	dispatcher := NewDispatcher(acceptingVerifier{}, store)
	handler := &recordingHandler{receiver: "github", err: errors.New("boom")}
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}

	req := core.InboundRequest{
		ReceiverName: "github",
		Headers:      map[string]string{"X-GitHub-Delivery": "dlv-2"},
	}
	route := core.RouteContext{ReceiverName: "github", ReceiverExists: true}

	if _, err := dispatcher.Dispatch(context.Background(), req, route); err == nil {
		t.Fatal("expected handler failure to surface")
	}

	handler.err = nil
	handler.result = core.InboundResult{Accepted: true, StatusCode: http.StatusOK}
	if _, err := dispatcher.Dispatch(context.Background(), req, route); err != nil {
		t.Fatalf("retry after failure should be claimable: %v", err)
	}
	if handler.calls != 2 {
		t.Fatalf("expected retry to reach handler, got %d calls", handler.calls)
	}
}

func TestDispatchNoHandlerIsNotFoundError(t *testing.T) {
	dispatcher := NewDispatcher(acceptingVerifier{}, nil)

	_, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "github",
	}, core.RouteContext{ReceiverName: "github", ReceiverExists: true})
	if err == nil {
		t.Fatal("expected missing handler to error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not-found envelope, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	dispatcher := NewDispatcher(acceptingVerifier{}, nil)
	handler := &recordingHandler{receiver: "github"}
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}
	err := dispatcher.Register(&recordingHandler{receiver: "GitHub"})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryConflict {
		t.Fatalf("expected conflict envelope, got %v", err)
	}
}

type acceptingVerifier struct{}

func (acceptingVerifier) Verify(context.Context, core.InboundRequest) (core.Verdict, error) {
	return core.Accept(), nil
}

type rejectingVerifier struct {
	reason core.RejectReason
}

func (v rejectingVerifier) Verify(context.Context, core.InboundRequest) (core.Verdict, error) {
	return core.Reject(v.reason), nil
}

type fixedVerifier struct {
	verdict core.Verdict
}

func (v fixedVerifier) Verify(context.Context, core.InboundRequest) (core.Verdict, error) {
	return v.verdict, nil
}

type recordingHandler struct {
	receiver string
	result   core.InboundResult
	err      error
	calls    int
}

func (h *recordingHandler) Receiver() string { return h.receiver }

func (h *recordingHandler) Handle(context.Context, core.InboundRequest, core.RouteContext) (core.InboundResult, error) {
	h.calls++
	if h.err != nil {
		return core.InboundResult{}, h.err
	}
	return h.result, nil
}
