package stripe

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-receivers/core"
)

func TestMetadataValidates(t *testing.T) {
	meta := Metadata()
	if err := meta.Validate(); err != nil {
		t.Fatalf("expected valid descriptor: %v", err)
	}
	if meta.Strategy != core.StrategyBodySignature {
		t.Fatalf("expected body-signature strategy, got %q", meta.Strategy)
	}
	if meta.Signature.Parser == nil {
		t.Fatal("expected structured header parser to be installed")
	}
}

func TestParseSignatureHeader(t *testing.T) {
	candidates, err := ParseSignatureHeader("t=1700000000,v1=aa11,v1=bb22,v0=legacy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(candidates, []string{"aa11", "bb22"}) {
		t.Fatalf("expected every v1 candidate, got %v", candidates)
	}
}

func TestParseSignatureHeaderSkipsMalformedPairs(t *testing.T) {
	candidates, err := ParseSignatureHeader("garbage, v1=cc33 ,v1=, t=99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(candidates, []string{"cc33"}) {
		t.Fatalf("expected malformed pairs to be skipped, got %v", candidates)
	}
}

func TestParseSignatureHeaderEmpty(t *testing.T) {
	candidates, err := ParseSignatureHeader("t=1700000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %v", candidates)
	}
}
