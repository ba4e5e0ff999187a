package inbound

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-receivers/core"
)

func TestDispatchCoalescesBurstsByResource(t *testing.T) {
	handler := &recordingHandler{
		receiver: "github",
		result:   core.InboundResult{Accepted: true, StatusCode: http.StatusAccepted},
	}
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	dispatcher := NewDispatcher(acceptingVerifier{}, NewInMemoryClaimStore())
	dispatcher.Burst = NewBurstController(BurstOptions{
		Mode:   BurstModeCoalesce,
		Window: 10 * time.Second,
		Now: func() time.Time {
			return now
		},
	})
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}
	route := core.RouteContext{ReceiverName: "github", ReceiverExists: true}

	first, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "github",
		Metadata: map[string]any{
			"delivery_id": "delivery-1",
			"resource_id": "repo-1",
		},
	}, route)
	if err != nil {
		t.Fatalf("dispatch first burst delivery: %v", err)
	}
	if !first.Accepted {
		t.Fatalf("expected first delivery accepted")
	}
	if handler.calls != 1 {
		t.Fatalf("expected handler calls=1, got %d", handler.calls)
	}

	now = now.Add(2 * time.Second)
	second, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
		ReceiverName: "github",
		Metadata: map[string]any{
			"delivery_id": "delivery-2",
			"resource_id": "repo-1",
		},
	}, route)
	if err != nil {
		t.Fatalf("dispatch coalesced delivery: %v", err)
	}
	if !second.Accepted {
		t.Fatalf("expected coalesced delivery accepted")
	}
	if second.Metadata["coalesced"] != true {
		t.Fatalf("expected coalesced metadata marker, got %#v", second.Metadata)
	}
	if handler.calls != 1 {
		t.Fatalf("expected handler calls to remain 1 for coalesced delivery")
	}
}

func TestDispatchDebounceAllowsAfterQuietPeriod(t *testing.T) {
	handler := &recordingHandler{
		receiver: "shopify",
		result:   core.InboundResult{Accepted: true, StatusCode: http.StatusOK},
	}
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	dispatcher := NewDispatcher(acceptingVerifier{}, NewInMemoryClaimStore())
	dispatcher.Burst = NewBurstController(BurstOptions{
		Mode:   BurstModeDebounce,
		Window: 5 * time.Second,
		Now: func() time.Time {
			return now
		},
	})
	if err := dispatcher.Register(handler); err != nil {
		t.Fatalf("register handler: %v", err)
	}
	route := core.RouteContext{ReceiverName: "shopify", ReceiverExists: true}

	deliver := func(id string) core.InboundResult {
		t.Helper()
		result, err := dispatcher.Dispatch(context.Background(), core.InboundRequest{
			ReceiverName: "shopify",
			Headers:      map[string]string{"X-Shopify-Topic": "products/update"},
			Metadata:     map[string]any{"delivery_id": id},
		}, route)
		if err != nil {
			t.Fatalf("dispatch delivery %s: %v", id, err)
		}
		return result
	}

	deliver("delivery-1")
	if handler.calls != 1 {
		t.Fatalf("expected handler calls=1, got %d", handler.calls)
	}

	now = now.Add(2 * time.Second)
	second := deliver("delivery-2")
	if second.Metadata["debounced"] != true {
		t.Fatalf("expected debounced metadata marker, got %#v", second.Metadata)
	}
	if handler.calls != 1 {
		t.Fatalf("expected handler calls=1 within debounce window")
	}

	now = now.Add(6 * time.Second)
	deliver("delivery-3")
	if handler.calls != 2 {
		t.Fatalf("expected handler to run after quiet period, got %d calls", handler.calls)
	}
}

func TestBurstControllerSkipsDeliveriesWithoutResourceSignal(t *testing.T) {
	controller := NewBurstController(BurstOptions{
		Mode:   BurstModeCoalesce,
		Window: 10 * time.Second,
	})

	for i := 0; i < 3; i++ {
		decision, err := controller.Allow(context.Background(), core.InboundRequest{
			ReceiverName: "github",
		})
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !decision.Allow {
			t.Fatalf("expected delivery without resource signal to pass")
		}
	}
}
