package inbound

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/verify"
)

// DeliveryKeyExtractor resolves the sender-assigned delivery id used for
// duplicate suppression. Returning "" means the delivery carries no usable
// id and dedupe is skipped for it.
type DeliveryKeyExtractor func(req core.InboundRequest) string

// Dispatcher is the inbound pipeline: route context in, verified and
// deduplicated handler invocation out. Rejections surface as results with
// the verdict's status code; errors are reserved for infrastructure
// failures and missing handlers.
type Dispatcher struct {
	Verifier   core.Verifier
	Store      core.ClaimStore
	Burst      BurstController
	ExtractKey DeliveryKeyExtractor
	KeyTTL     time.Duration

	mu       sync.RWMutex
	handlers map[string]core.InboundHandler
}

func NewDispatcher(verifier core.Verifier, store core.ClaimStore) *Dispatcher {
	return &Dispatcher{
		Verifier:   verifier,
		Store:      store,
		ExtractKey: DefaultDeliveryKeyExtractor,
		KeyTTL:     10 * time.Minute,
		handlers:   map[string]core.InboundHandler{},
	}
}

func (d *Dispatcher) Register(handler core.InboundHandler) error {
	if d == nil {
		return inboundInternal("inbound: dispatcher is nil", nil)
	}
	if handler == nil {
		return inboundBadInput("inbound: handler is nil", nil)
	}
	receiver := strings.TrimSpace(strings.ToLower(handler.Receiver()))
	if receiver == "" {
		return inboundBadInput("inbound: handler receiver name is empty", nil)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[receiver]; exists {
		return inboundError(
			fmt.Sprintf("inbound: handler already registered for receiver %q", receiver),
			goerrors.CategoryConflict,
			http.StatusConflict,
			core.ReceiverErrorConflict,
			map[string]any{"receiver": receiver},
		)
	}
	d.handlers[receiver] = handler
	return nil
}

// Dispatch runs one delivery end to end: existence check, verification,
// short-circuit handshakes, burst absorption, duplicate suppression, then
// the receiver's handler. Duplicate deliveries are acknowledged with 200 and never reach
// the handler a second time.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.InboundRequest, route core.RouteContext) (core.InboundResult, error) {
	if d == nil {
		return core.InboundResult{}, inboundInternal("inbound: dispatcher is nil", nil)
	}
	if d.Verifier == nil {
		return core.InboundResult{}, inboundInternal("inbound: verifier is required", nil)
	}

	key := core.ReceiverConfigKey{
		ReceiverName:    firstNonEmpty(req.ReceiverName, route.ReceiverName),
		ConfigurationID: firstNonEmpty(req.ConfigurationID, route.ConfigurationID),
	}.Normalize()
	if key.ReceiverName == "" {
		return core.InboundResult{}, inboundBadInput("inbound: receiver name is required", nil)
	}
	req.ReceiverName = key.ReceiverName
	req.ConfigurationID = key.ConfigurationID

	if !route.ReceiverExists {
		return rejectedResult(key, core.Reject(core.RejectReasonNotFound)), nil
	}

	verdict, err := d.Verifier.Verify(ctx, req)
	if err != nil {
		return core.InboundResult{}, inboundWrapError(
			err,
			goerrors.CategoryOperation,
			"inbound: verification failed",
			http.StatusInternalServerError,
			core.ReceiverErrorOperationFailed,
			map[string]any{"receiver": key.ReceiverName, "receiver_id": key.ConfigurationID},
		)
	}
	if !verdict.Accepted {
		return rejectedResult(key, verdict), nil
	}
	if shortCircuit, _ := verdict.Metadata[verify.MetadataShortCircuit].(bool); shortCircuit {
		return core.InboundResult{
			Accepted:   true,
			StatusCode: http.StatusOK,
			Metadata:   resultMetadata(key, verdict.Metadata),
		}, nil
	}

	if d.Burst != nil {
		decision, err := d.Burst.Allow(ctx, req)
		if err != nil {
			return core.InboundResult{}, inboundWrapError(
				err,
				goerrors.CategoryOperation,
				"inbound: burst control failed",
				http.StatusInternalServerError,
				core.ReceiverErrorOperationFailed,
				map[string]any{"receiver": key.ReceiverName, "receiver_id": key.ConfigurationID},
			)
		}
		if !decision.Allow {
			metadata := resultMetadata(key, verdict.Metadata)
			for name, value := range decision.Metadata {
				metadata[name] = value
			}
			return core.InboundResult{
				Accepted:   true,
				StatusCode: http.StatusOK,
				Events:     route.Events,
				Metadata:   metadata,
			}, nil
		}
	}

	claimID := ""
	if d.Store != nil {
		extractor := d.ExtractKey
		if extractor == nil {
			extractor = DefaultDeliveryKeyExtractor
		}
		if deliveryKey := extractor(req); deliveryKey != "" {
			var accepted bool
			claimID, accepted, err = d.Store.Claim(ctx, key.ReceiverName+":"+key.ConfigurationID+":"+deliveryKey, d.keyTTL())
			if err != nil {
				return core.InboundResult{}, inboundWrapError(
					err,
					goerrors.CategoryOperation,
					"inbound: delivery claim failed",
					http.StatusInternalServerError,
					core.ReceiverErrorOperationFailed,
					map[string]any{
						"receiver":    key.ReceiverName,
						"receiver_id": key.ConfigurationID,
						"delivery":    deliveryKey,
					},
				)
			}
			if !accepted {
				metadata := resultMetadata(key, verdict.Metadata)
				metadata["deduped"] = true
				return core.InboundResult{
					Accepted:   true,
					StatusCode: http.StatusOK,
					Events:     route.Events,
					Metadata:   metadata,
				}, nil
			}
		}
	}

	handler := d.handlerFor(key.ReceiverName)
	if handler == nil {
		return core.InboundResult{}, inboundError(
			fmt.Sprintf("inbound: no handler registered for receiver %q", key.ReceiverName),
			goerrors.CategoryNotFound,
			http.StatusNotFound,
			core.ReceiverErrorNotFound,
			map[string]any{"receiver": key.ReceiverName, "receiver_id": key.ConfigurationID},
		)
	}
	result, err := handler.Handle(ctx, req, route)
	if err != nil {
		handlerErr := inboundWrapError(
			err,
			goerrors.CategoryOperation,
			"inbound: handler execution failed",
			http.StatusBadGateway,
			core.ReceiverErrorOperationFailed,
			map[string]any{"receiver": key.ReceiverName, "receiver_id": key.ConfigurationID},
		)
		if failErr := d.failClaim(ctx, claimID, err); failErr != nil {
			return core.InboundResult{}, errors.Join(handlerErr, failErr)
		}
		return core.InboundResult{}, handlerErr
	}
	if !result.Accepted || result.StatusCode >= http.StatusInternalServerError {
		retryErr := inboundError(
			fmt.Sprintf("inbound: handler returned retryable status %d", result.StatusCode),
			goerrors.CategoryOperation,
			http.StatusBadGateway,
			core.ReceiverErrorOperationFailed,
			map[string]any{
				"receiver":    key.ReceiverName,
				"receiver_id": key.ConfigurationID,
				"status_code": result.StatusCode,
			},
		)
		if failErr := d.failClaim(ctx, claimID, retryErr); failErr != nil {
			return result, errors.Join(retryErr, failErr)
		}
		return result, retryErr
	}
	if d.Store != nil && claimID != "" {
		if err := d.Store.Complete(ctx, claimID); err != nil {
			return core.InboundResult{}, inboundWrapError(
				err,
				goerrors.CategoryOperation,
				"inbound: complete delivery claim",
				http.StatusInternalServerError,
				core.ReceiverErrorOperationFailed,
				map[string]any{"receiver": key.ReceiverName, "receiver_id": key.ConfigurationID, "claim_id": claimID},
			)
		}
	}
	if len(result.Events) == 0 {
		result.Events = route.Events
	}
	merged := resultMetadata(key, verdict.Metadata)
	for name, value := range result.Metadata {
		merged[name] = value
	}
	result.Metadata = merged
	return result, nil
}

// DefaultDeliveryKeyExtractor checks the request metadata first, then the
// sender-specific delivery id headers the built-in receivers emit.
func DefaultDeliveryKeyExtractor(req core.InboundRequest) string {
	if req.Metadata != nil {
		if value := trimAny(req.Metadata["delivery_id"]); value != "" {
			return value
		}
		if value := trimAny(req.Metadata["idempotency_key"]); value != "" {
			return value
		}
	}
	for _, name := range []string{
		"X-GitHub-Delivery",
		"X-Shopify-Webhook-Id",
		"Idempotency-Key",
		"X-Idempotency-Key",
		"X-Message-Id",
	} {
		if value := headerValue(req.Headers, name); value != "" {
			return value
		}
	}
	return ""
}

func (d *Dispatcher) failClaim(ctx context.Context, claimID string, cause error) error {
	if d.Store == nil || claimID == "" {
		return nil
	}
	if err := d.Store.Fail(ctx, claimID, cause, time.Time{}); err != nil {
		return inboundWrapError(
			err,
			goerrors.CategoryOperation,
			"inbound: mark delivery claim failed",
			http.StatusInternalServerError,
			core.ReceiverErrorInternal,
			map[string]any{"claim_id": claimID},
		)
	}
	return nil
}

func (d *Dispatcher) keyTTL() time.Duration {
	if d != nil && d.KeyTTL > 0 {
		return d.KeyTTL
	}
	return 10 * time.Minute
}

func (d *Dispatcher) handlerFor(receiver string) core.InboundHandler {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[receiver]
}

func rejectedResult(key core.ReceiverConfigKey, verdict core.Verdict) core.InboundResult {
	metadata := resultMetadata(key, verdict.Metadata)
	metadata["rejected"] = true
	if verdict.Reason != core.RejectReasonNone {
		metadata["reason"] = string(verdict.Reason)
	}
	return core.InboundResult{
		Accepted:   false,
		StatusCode: verdict.StatusCode,
		Metadata:   metadata,
	}
}

func resultMetadata(key core.ReceiverConfigKey, verdict map[string]any) map[string]any {
	metadata := make(map[string]any, len(verdict)+2)
	for name, value := range verdict {
		metadata[name] = value
	}
	metadata["receiver"] = key.ReceiverName
	metadata["receiver_id"] = key.ConfigurationID
	return metadata
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func trimAny(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func headerValue(headers map[string]string, key string) string {
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
