package core

import (
	"context"
	"strings"
)

// NopMetricsRecorder is the default recorder when the host wires none.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// SafeMetrics wraps a recorder so emission sites never nil-check and metric
// names arrive trimmed. Tags are cloned before handoff because recorders may
// retain the map past the call.
func SafeMetrics(recorder MetricsRecorder) MetricsRecorder {
	if recorder == nil {
		return NopMetricsRecorder{}
	}
	if _, ok := recorder.(safeMetrics); ok {
		return recorder
	}
	return safeMetrics{recorder: recorder}
}

type safeMetrics struct {
	recorder MetricsRecorder
}

func (m safeMetrics) IncCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	m.recorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (m safeMetrics) ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	m.recorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(tags))
	for key, value := range tags {
		cloned[key] = value
	}
	return cloned
}
