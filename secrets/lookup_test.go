package secrets

import (
	"context"
	"testing"
)

func TestLookup_SecretKeysUsesDefaultIDWhenUnspecified(t *testing.T) {
	lookup := newTestLookup(t, map[string]string{
		"receivers.stripe.secretKey.default": "abc123",
	})

	keys, found, err := lookup.SecretKeys(context.Background(), "stripe", "")
	if err != nil {
		t.Fatalf("lookup stripe secrets: %v", err)
	}
	if !found {
		t.Fatalf("expected default-id secrets to be found")
	}
	if len(keys) != 1 || keys[0] != "abc123" {
		t.Fatalf("unexpected key set %v", keys)
	}
}

func TestLookup_SecretKeysSplitsRotationList(t *testing.T) {
	lookup := newTestLookup(t, map[string]string{
		"receivers.github.secretKey.app1": "oldkey, newkey",
	})

	keys, found, err := lookup.SecretKeys(context.Background(), "github", "app1")
	if err != nil {
		t.Fatalf("lookup github secrets: %v", err)
	}
	if !found {
		t.Fatalf("expected app1 secrets to be found")
	}
	if len(keys) != 2 || keys[0] != "oldkey" || keys[1] != "newkey" {
		t.Fatalf("unexpected rotation key set %v", keys)
	}
}

func TestLookup_SecretKeysAbsenceIsNotAnError(t *testing.T) {
	lookup := newTestLookup(t, map[string]string{})

	keys, found, err := lookup.SecretKeys(context.Background(), "stripe", "missing")
	if err != nil {
		t.Fatalf("expected absence without error, got %v", err)
	}
	if found || keys != nil {
		t.Fatalf("expected not-found result, got %v", keys)
	}
}

func TestLookup_SecretKeysRejectsEmptyReceiverName(t *testing.T) {
	lookup := newTestLookup(t, map[string]string{})

	if _, _, err := lookup.SecretKeys(context.Background(), "  ", "default"); err == nil {
		t.Fatalf("expected argument error for empty receiver name")
	}
}

func TestLookup_HasSecretKeys(t *testing.T) {
	lookup := newTestLookup(t, map[string]string{
		"receivers.github.secretKey.default": "key",
	})

	has, err := lookup.HasSecretKeys(context.Background(), "stripe")
	if err != nil {
		t.Fatalf("check stripe secrets: %v", err)
	}
	if has {
		t.Fatalf("expected stripe to have no configured secrets")
	}

	has, err = lookup.HasSecretKeys(context.Background(), "github")
	if err != nil {
		t.Fatalf("check github secrets: %v", err)
	}
	if !has {
		t.Fatalf("expected github to have configured secrets")
	}
}

func TestLookup_HasSecretKeysIgnoresBlankValues(t *testing.T) {
	lookup := newTestLookup(t, map[string]string{
		"receivers.devkit.secretKey.default": "  , ",
	})

	has, err := lookup.HasSecretKeys(context.Background(), "devkit")
	if err != nil {
		t.Fatalf("check devkit secrets: %v", err)
	}
	if has {
		t.Fatalf("expected blank-only configuration to read as unconfigured")
	}
}

func TestStaticSource_SectionBoundaries(t *testing.T) {
	source := NewStaticSource(map[string]string{
		"receivers.github.secretKey.default": "a",
		"receivers.github.secretKeyOther":    "b",
	})

	section, ok := source.Section("receivers.github.secretKey")
	if !ok {
		t.Fatalf("expected section to exist")
	}
	if len(section) != 1 {
		t.Fatalf("expected sibling key to be excluded, got %v", section)
	}
	if section["default"] != "a" {
		t.Fatalf("unexpected section contents %v", section)
	}
}

func newTestLookup(t *testing.T, values map[string]string) *Lookup {
	t.Helper()
	lookup, err := NewLookup(NewStaticSource(values))
	if err != nil {
		t.Fatalf("build lookup: %v", err)
	}
	return lookup
}
