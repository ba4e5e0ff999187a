// Package gojob maps the kernel's job contracts onto go-job queues so hosts
// can run receiver maintenance (claim pruning, secret cache refresh) on the
// queue infrastructure they already operate.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-receivers/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

const (
	JobIDClaimsPrune        = "receivers.claims.prune"
	JobIDSecretCacheRefresh = "receivers.secrets.cache_refresh"
)

// NewClaimsPruneMessage builds the periodic claim-store maintenance job.
// The fixed idempotency key with a drop policy collapses overlapping runs.
func NewClaimsPruneMessage() *core.JobExecutionMessage {
	return &core.JobExecutionMessage{
		JobID:          JobIDClaimsPrune,
		IdempotencyKey: JobIDClaimsPrune,
		DedupPolicy:    "drop",
	}
}

// NewSecretCacheRefreshMessage builds the job that forces a cached key-set
// re-read for one receiver configuration after an out-of-band rotation.
func NewSecretCacheRefreshMessage(receiverName, configurationID string) *core.JobExecutionMessage {
	key := core.ReceiverConfigKey{
		ReceiverName:    receiverName,
		ConfigurationID: configurationID,
	}.Normalize()
	return &core.JobExecutionMessage{
		JobID: JobIDSecretCacheRefresh,
		Parameters: map[string]any{
			"receiver":    key.ReceiverName,
			"receiver_id": key.ConfigurationID,
		},
		IdempotencyKey: JobIDSecretCacheRefresh + ":" + key.ReceiverName + ":" + key.ConfigurationID,
		DedupPolicy:    "drop",
	}
}

// RetryPolicy bounds how maintenance jobs are retried after a failure.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt clamps nack options against the policy for one attempt.
// Past MaxAttempts the message stops requeueing and, when configured, dead
// letters instead of being silently dropped.
func (p RetryPolicy) NormalizeAttempt(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// ToExecutionMessage maps a kernel job message onto the go-job wire shape.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

// FromExecutionMessage maps a go-job message back into the kernel contract.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

// EnqueuerAdapter submits kernel job messages to a go-job queue.
type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	_, err := a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
	return err
}

// DeliveryAdapter wraps one in-flight queue delivery, applying the retry
// policy on every nack.
type DeliveryAdapter struct {
	delivery queue.Delivery
	policy   RetryPolicy
}

func NewDeliveryAdapter(delivery queue.Delivery, policy RetryPolicy) *DeliveryAdapter {
	return &DeliveryAdapter{delivery: delivery, policy: policy}
}

func (d *DeliveryAdapter) Message() *core.JobExecutionMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return FromExecutionMessage(d.delivery.Message())
}

func (d *DeliveryAdapter) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *DeliveryAdapter) Nack(ctx context.Context, opts core.JobNackOptions) error {
	return d.NackForAttempt(ctx, opts, 0)
}

func (d *DeliveryAdapter) NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	clamped := d.policy.NormalizeAttempt(opts, attempt)
	disposition := queue.NackDispositionFailed
	switch {
	case clamped.DeadLetter:
		disposition = queue.NackDispositionDeadLetter
	case clamped.Requeue:
		disposition = queue.NackDispositionRetry
	}
	return d.delivery.Nack(ctx, queue.NackOptions{
		Disposition: disposition,
		Delay:       clamped.Delay,
		Reason:      clamped.Reason,
	})
}

// DequeuerAdapter pulls deliveries and hands them out pre-wrapped with the
// retry policy.
type DequeuerAdapter struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
}

func NewDequeuerAdapter(dequeuer queue.Dequeuer, policy RetryPolicy) *DequeuerAdapter {
	return &DequeuerAdapter{dequeuer: dequeuer, policy: policy}
}

func (a *DequeuerAdapter) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if a == nil || a.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := a.dequeuer.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	return NewDeliveryAdapter(delivery, a.policy), nil
}

// WorkerHookAdapter forwards go-job worker lifecycle events to a kernel hook.
type WorkerHookAdapter struct {
	hook core.JobWorkerHook
}

func NewWorkerHookAdapter(hook core.JobWorkerHook) *WorkerHookAdapter {
	return &WorkerHookAdapter{hook: hook}
}

func (a *WorkerHookAdapter) target() core.JobWorkerHook {
	if a == nil {
		return nil
	}
	return a.hook
}

func (a *WorkerHookAdapter) OnStart(ctx context.Context, event worker.Event) {
	if hook := a.target(); hook != nil {
		hook.OnStart(ctx, mapWorkerEvent(event))
	}
}

func (a *WorkerHookAdapter) OnSuccess(ctx context.Context, event worker.Event) {
	if hook := a.target(); hook != nil {
		hook.OnSuccess(ctx, mapWorkerEvent(event))
	}
}

func (a *WorkerHookAdapter) OnFailure(ctx context.Context, event worker.Event) {
	if hook := a.target(); hook != nil {
		hook.OnFailure(ctx, mapWorkerEvent(event))
	}
}

func (a *WorkerHookAdapter) OnRetry(ctx context.Context, event worker.Event) {
	if hook := a.target(); hook != nil {
		hook.OnRetry(ctx, mapWorkerEvent(event))
	}
}

// mapWorkerEvent prefers the event's own message and falls back to the
// delivery payload, which is all some queue backends populate.
func mapWorkerEvent(event worker.Event) core.JobWorkerEvent {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	return core.JobWorkerEvent{
		Message:   FromExecutionMessage(message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func cloneParameters(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobEnqueuer = (*EnqueuerAdapter)(nil)
	_ core.JobDelivery = (*DeliveryAdapter)(nil)
	_ core.JobDequeuer = (*DequeuerAdapter)(nil)
	_ worker.Hook      = (*WorkerHookAdapter)(nil)
)
