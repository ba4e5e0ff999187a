package secrets

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-receivers/core"
)

type FailurePolicy string

const (
	FailurePolicyStrict   FailurePolicy = "strict_fail"
	FailurePolicyFallback FailurePolicy = "fallback_allowed"
)

type ResolverDiagnostic struct {
	OccurredAt time.Time
	Operation  string
	Policy     FailurePolicy
	Outcome    string
	Primary    string
	Fallback   string
	Error      string
}

type ResolverDiagnosticHook func(event ResolverDiagnostic)

type FailoverOption func(*FailoverResolver)

// FailoverResolver chains two secret resolvers, typically a database-backed
// store in front of a config-file lookup. A primary miss always consults the
// fallback; a primary failure consults it only under the fallback policy.
type FailoverResolver struct {
	primary        core.SecretResolver
	fallback       core.SecretResolver
	policy         FailurePolicy
	diagnosticHook ResolverDiagnosticHook
	now            func() time.Time
}

func NewFailoverResolver(primary core.SecretResolver, opts ...FailoverOption) (*FailoverResolver, error) {
	if primary == nil {
		return nil, fmt.Errorf("secrets: primary resolver is required")
	}
	resolver := &FailoverResolver{
		primary: primary,
		policy:  FailurePolicyStrict,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(resolver)
	}
	resolver.policy = normalizeFailurePolicy(resolver.policy)
	if resolver.policy == FailurePolicyFallback && resolver.fallback == nil {
		return nil, fmt.Errorf("secrets: fallback policy requires a configured fallback resolver")
	}
	if resolver.now == nil {
		resolver.now = func() time.Time { return time.Now().UTC() }
	}
	return resolver, nil
}

func WithFallbackResolver(resolver core.SecretResolver) FailoverOption {
	return func(f *FailoverResolver) {
		if f == nil {
			return
		}
		f.fallback = resolver
	}
}

func WithFailurePolicy(policy FailurePolicy) FailoverOption {
	return func(f *FailoverResolver) {
		if f == nil {
			return
		}
		f.policy = normalizeFailurePolicy(policy)
	}
}

func WithResolverDiagnostics(hook ResolverDiagnosticHook) FailoverOption {
	return func(f *FailoverResolver) {
		if f == nil {
			return
		}
		f.diagnosticHook = hook
	}
}

func WithFailoverClock(now func() time.Time) FailoverOption {
	return func(f *FailoverResolver) {
		if f == nil {
			return
		}
		f.now = now
	}
}

func (f *FailoverResolver) SecretKeys(ctx context.Context, receiverName, configurationID string) (core.SecretKeySet, bool, error) {
	if f == nil {
		return nil, false, fmt.Errorf("secrets: failover resolver is nil")
	}
	keys, found, err := f.primary.SecretKeys(ctx, receiverName, configurationID)
	if err == nil {
		if found {
			return keys, true, nil
		}
		if f.fallback == nil {
			return nil, false, nil
		}
		return f.fallback.SecretKeys(ctx, receiverName, configurationID)
	}
	f.emit("secret_keys", "primary_failed", err)
	if f.policy == FailurePolicyStrict || f.fallback == nil {
		return nil, false, fmt.Errorf("secrets: primary resolver failed with %s policy: %w", f.policy, err)
	}
	keys, found, fallbackErr := f.fallback.SecretKeys(ctx, receiverName, configurationID)
	if fallbackErr != nil {
		f.emit("secret_keys", "fallback_failed", fallbackErr)
		return nil, false, fmt.Errorf("secrets: primary resolver failed: %v; fallback failed: %w", err, fallbackErr)
	}
	f.emit("secret_keys", "fallback_succeeded", err)
	return keys, found, nil
}

func (f *FailoverResolver) HasSecretKeys(ctx context.Context, receiverName string) (bool, error) {
	if f == nil {
		return false, fmt.Errorf("secrets: failover resolver is nil")
	}
	has, err := f.primary.HasSecretKeys(ctx, receiverName)
	if err == nil {
		if has || f.fallback == nil {
			return has, nil
		}
		return f.fallback.HasSecretKeys(ctx, receiverName)
	}
	f.emit("has_secret_keys", "primary_failed", err)
	if f.policy == FailurePolicyStrict || f.fallback == nil {
		return false, fmt.Errorf("secrets: primary resolver failed with %s policy: %w", f.policy, err)
	}
	has, fallbackErr := f.fallback.HasSecretKeys(ctx, receiverName)
	if fallbackErr != nil {
		f.emit("has_secret_keys", "fallback_failed", fallbackErr)
		return false, fmt.Errorf("secrets: primary resolver failed: %v; fallback failed: %w", err, fallbackErr)
	}
	f.emit("has_secret_keys", "fallback_succeeded", err)
	return has, nil
}

// RotateSecretKeys writes through to the primary resolver. The fallback is
// read-only by construction.
func (f *FailoverResolver) RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error {
	if f == nil {
		return fmt.Errorf("secrets: failover resolver is nil")
	}
	rotator, ok := f.primary.(interface {
		RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error
	})
	if !ok {
		return fmt.Errorf("secrets: primary resolver does not support rotation")
	}
	return rotator.RotateSecretKeys(ctx, receiverName, configurationID, keys)
}

func (f *FailoverResolver) emit(operation string, outcome string, err error) {
	if f == nil || f.diagnosticHook == nil {
		return
	}
	now := f.now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	f.diagnosticHook(ResolverDiagnostic{
		OccurredAt: now().UTC(),
		Operation:  operation,
		Policy:     f.policy,
		Outcome:    outcome,
		Primary:    describeResolver(f.primary),
		Fallback:   describeResolver(f.fallback),
		Error:      msg,
	})
}

func normalizeFailurePolicy(policy FailurePolicy) FailurePolicy {
	normalized := FailurePolicy(strings.ToLower(strings.TrimSpace(string(policy))))
	switch normalized {
	case FailurePolicyFallback:
		return FailurePolicyFallback
	default:
		return FailurePolicyStrict
	}
}

func describeResolver(resolver core.SecretResolver) string {
	if resolver == nil {
		return ""
	}
	return reflect.TypeOf(resolver).String()
}

var _ core.SecretResolver = (*FailoverResolver)(nil)
