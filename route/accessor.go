package route

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-receivers/core"
)

// Route value keys the host router is expected to populate when matching a
// receiver route. Values are weakly typed; this package is the single
// translation point into the strongly-typed core.RouteContext so verifier
// and dispatch code never touch raw route values.
const (
	KeyReceiverName    = "receiver"
	KeyConfigurationID = "receiver_id"
	KeyReceiverExists  = "receiver_exists"
	KeyEventName       = "event"
)

// maxIndexedEvents bounds the fallback scan so a hostile route map cannot
// force unbounded iteration.
const maxIndexedEvents = 64

// Values is the weakly-typed route value map produced by the host router.
type Values map[string]any

// ReceiverName returns the matched receiver name, if present and non-empty.
func ReceiverName(values Values) (string, bool) {
	return stringValue(values, KeyReceiverName)
}

// ConfigurationID returns the configuration id, if present and non-empty.
// Callers substitute core.DefaultConfigurationID when absent.
func ConfigurationID(values Values) (string, bool) {
	return stringValue(values, KeyConfigurationID)
}

// ReceiverExists reads the boolean marker set earlier in the pipeline by the
// receiver-existence check. Missing or mistyped markers default to false.
func ReceiverExists(values Values) bool {
	if values == nil {
		return false
	}
	switch typed := values[KeyReceiverExists].(type) {
	case bool:
		return typed
	case string:
		return strings.EqualFold(strings.TrimSpace(typed), "true")
	default:
		return false
	}
}

// EventName returns the first event name the delivery represents.
func EventName(values Values) (string, bool) {
	events, ok := EventNames(values)
	if !ok || len(events) == 0 {
		return "", false
	}
	return events[0], true
}

// EventNames extracts the ordered event names of a delivery. The canonical
// event key takes priority and suppresses the indexed fallbacks entirely.
// Otherwise indexed keys event[0], event[1], ... are collected in order;
// the scan stops at the first gap even if later indices are populated.
func EventNames(values Values) ([]string, bool) {
	if values == nil {
		return nil, false
	}
	if canonical, ok := canonicalEvents(values); ok {
		return canonical, true
	}

	var events []string
	for i := 0; i < maxIndexedEvents; i++ {
		value, ok := stringValue(values, eventKey(i))
		if !ok {
			break
		}
		events = append(events, value)
	}
	if len(events) == 0 {
		return nil, false
	}
	return events, true
}

// Context builds the per-request strongly-typed route context.
func Context(values Values) core.RouteContext {
	name, _ := ReceiverName(values)
	id, _ := ConfigurationID(values)
	events, _ := EventNames(values)
	return core.RouteContext{
		ReceiverName:    name,
		ConfigurationID: id,
		Events:          events,
		ReceiverExists:  ReceiverExists(values),
	}
}

func canonicalEvents(values Values) ([]string, bool) {
	raw, present := values[KeyEventName]
	if !present {
		return nil, false
	}
	switch typed := raw.(type) {
	case string:
		if trimmed := strings.TrimSpace(typed); trimmed != "" {
			return []string{trimmed}, true
		}
	case []string:
		events := make([]string, 0, len(typed))
		for _, event := range typed {
			if trimmed := strings.TrimSpace(event); trimmed != "" {
				events = append(events, trimmed)
			}
		}
		if len(events) > 0 {
			return events, true
		}
	}
	return nil, false
}

func stringValue(values Values, key string) (string, bool) {
	if values == nil {
		return "", false
	}
	raw, present := values[key]
	if !present {
		return "", false
	}
	typed, ok := raw.(string)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(typed)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

func eventKey(index int) string {
	return fmt.Sprintf("%s[%d]", KeyEventName, index)
}
