package receivers_test

import (
	"testing"

	"github.com/goliatone/go-receivers/core"
	"github.com/goliatone/go-receivers/receivers"
	"github.com/goliatone/go-receivers/receivers/devkit"
	"github.com/goliatone/go-receivers/receivers/dropbox"
)

func TestBuiltinDescriptorsValidate(t *testing.T) {
	descriptors := receivers.Builtin()
	if len(descriptors) != 5 {
		t.Fatalf("expected five built-in descriptors, got %d", len(descriptors))
	}

	registry := core.NewMetadataRegistry()
	for _, meta := range descriptors {
		if err := meta.Validate(); err != nil {
			t.Fatalf("descriptor %q failed validation: %v", meta.Name, err)
		}
		if err := registry.Register(meta); err != nil {
			t.Fatalf("descriptor %q failed registration: %v", meta.Name, err)
		}
	}

	if !registry.Has(dropbox.ReceiverID) {
		t.Fatal("expected dropbox to be registered")
	}

	meta, err := registry.Metadata(dropbox.ReceiverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !meta.ShortCircuitGetRequests || meta.GetProtocol == nil {
		t.Fatal("expected dropbox to short-circuit GET requests with a challenge protocol")
	}

	meta, err = registry.Metadata(devkit.ReceiverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !meta.VerifyCodeParameter() {
		t.Fatal("expected devkit to authenticate with the code parameter")
	}
}
