package route

import (
	"reflect"
	"testing"
)

func TestReceiverNameTrimsAndRejectsEmpty(t *testing.T) {
	name, ok := ReceiverName(Values{KeyReceiverName: "  github  "})
	if !ok || name != "github" {
		t.Fatalf("expected trimmed receiver name, got %q ok=%v", name, ok)
	}

	if _, ok := ReceiverName(Values{KeyReceiverName: "   "}); ok {
		t.Fatal("expected blank receiver name to report not found")
	}

	if _, ok := ReceiverName(nil); ok {
		t.Fatal("expected nil values to report not found")
	}
}

func TestConfigurationID(t *testing.T) {
	id, ok := ConfigurationID(Values{KeyConfigurationID: "tenant-a"})
	if !ok || id != "tenant-a" {
		t.Fatalf("expected configuration id, got %q ok=%v", id, ok)
	}

	if _, ok := ConfigurationID(Values{}); ok {
		t.Fatal("expected missing configuration id to report not found")
	}
}

func TestReceiverExistsDefaultsFalse(t *testing.T) {
	if ReceiverExists(nil) {
		t.Fatal("expected nil values to default to false")
	}
	if ReceiverExists(Values{}) {
		t.Fatal("expected missing marker to default to false")
	}
	if ReceiverExists(Values{KeyReceiverExists: "yes"}) {
		t.Fatal("expected non-boolean marker to default to false")
	}
	if !ReceiverExists(Values{KeyReceiverExists: true}) {
		t.Fatal("expected boolean true marker to report true")
	}
	if !ReceiverExists(Values{KeyReceiverExists: "true"}) {
		t.Fatal("expected string true marker to report true")
	}
}

func TestEventNamesCanonicalWins(t *testing.T) {
	values := Values{
		KeyEventName: "push",
		"event[0]":   "ignored",
		"event[1]":   "also-ignored",
	}

	events, ok := EventNames(values)
	if !ok {
		t.Fatal("expected events to resolve")
	}
	if !reflect.DeepEqual(events, []string{"push"}) {
		t.Fatalf("expected canonical event to suppress fallbacks, got %v", events)
	}
}

func TestEventNamesCanonicalSlice(t *testing.T) {
	events, ok := EventNames(Values{KeyEventName: []string{"push", " release ", ""}})
	if !ok {
		t.Fatal("expected events to resolve")
	}
	if !reflect.DeepEqual(events, []string{"push", "release"}) {
		t.Fatalf("expected trimmed slice events, got %v", events)
	}
}

func TestEventNamesIndexedFallbackStopsAtGap(t *testing.T) {
	values := Values{
		"event[0]": "created",
		"event[1]": "updated",
		"event[3]": "unreachable",
	}

	events, ok := EventNames(values)
	if !ok {
		t.Fatal("expected events to resolve")
	}
	if !reflect.DeepEqual(events, []string{"created", "updated"}) {
		t.Fatalf("expected scan to stop at first gap, got %v", events)
	}
}

func TestEventNameReturnsFirst(t *testing.T) {
	event, ok := EventName(Values{"event[0]": "created", "event[1]": "updated"})
	if !ok || event != "created" {
		t.Fatalf("expected first event, got %q ok=%v", event, ok)
	}

	if _, ok := EventName(Values{}); ok {
		t.Fatal("expected missing events to report not found")
	}
}

func TestContextBuildsRouteContext(t *testing.T) {
	values := Values{
		KeyReceiverName:    "stripe",
		KeyConfigurationID: "tenant-a",
		KeyReceiverExists:  true,
		"event[0]":         "invoice.paid",
	}

	route := Context(values)
	if route.ReceiverName != "stripe" {
		t.Fatalf("expected receiver name, got %q", route.ReceiverName)
	}
	if route.ConfigurationID != "tenant-a" {
		t.Fatalf("expected configuration id, got %q", route.ConfigurationID)
	}
	if !route.ReceiverExists {
		t.Fatal("expected receiver exists marker to carry through")
	}
	if !reflect.DeepEqual(route.Events, []string{"invoice.paid"}) {
		t.Fatalf("expected events, got %v", route.Events)
	}
}
