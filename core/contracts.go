package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// ConfigSource is the narrow read-only view of a hierarchical key-value
// configuration tree. Keys are dot-separated paths; absence is reported via
// the boolean, never as an error. Implementations must be safe for
// unlimited concurrent readers after construction.
type ConfigSource interface {
	Get(key string) (string, bool)
	Section(prefix string) (map[string]string, bool)
}

// SecretResolver looks up the secret key set for one receiver configuration.
// A missing configuration returns found=false, not an error: "receiver not
// configured for this id" is a recoverable per-request condition.
type SecretResolver interface {
	SecretKeys(ctx context.Context, receiverName, configurationID string) (SecretKeySet, bool, error)
	HasSecretKeys(ctx context.Context, receiverName string) (bool, error)
}

// MetadataSource resolves the immutable descriptor of a registered
// receiver. Unknown names fail with a configuration error.
type MetadataSource interface {
	Metadata(receiverName string) (ReceiverMetadata, error)
	Has(receiverName string) bool
}

// Verifier decides the authenticity of one inbound request.
type Verifier interface {
	Verify(ctx context.Context, req InboundRequest) (Verdict, error)
}

// InboundHandler consumes an authenticated delivery for one receiver.
// Handlers are host-application collaborators; the kernel only selects and
// invokes them.
type InboundHandler interface {
	Receiver() string
	Handle(ctx context.Context, req InboundRequest, route RouteContext) (InboundResult, error)
}

// ClaimStore provides at-most-once claiming of delivery ids so duplicate
// sender retries are acknowledged without reprocessing.
type ClaimStore interface {
	Claim(ctx context.Context, key string, lease time.Duration) (string, bool, error)
	Complete(ctx context.Context, claimID string) error
	Fail(ctx context.Context, claimID string, cause error, retryAt time.Time) error
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
