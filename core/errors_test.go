package core

import (
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestDefaultErrorMapper_PreservesRichErrors(t *testing.T) {
	source := goerrors.New("core: receiver not registered: unknown", goerrors.CategoryNotFound).
		WithTextCode(ReceiverErrorNotFound)
	mapped := DefaultErrorMapper(source)
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.TextCode != ReceiverErrorNotFound {
		t.Fatalf("expected text code preserved, got %s", mapped.TextCode)
	}
	if mapped.Code != http.StatusNotFound {
		t.Fatalf("expected 404 envelope code, got %d", mapped.Code)
	}
}

func TestDefaultErrorMapper_ClassifiesPlainErrors(t *testing.T) {
	mapped := DefaultErrorMapper(errors.New("verify: signature verification failed"))
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.Category != goerrors.CategoryAuth {
		t.Fatalf("expected auth category, got %v", mapped.Category)
	}
	if mapped.TextCode != ReceiverErrorVerificationFailed {
		t.Fatalf("expected verification-failed text code, got %s", mapped.TextCode)
	}
}

func TestDefaultErrorMapper_NilIsNil(t *testing.T) {
	if DefaultErrorMapper(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}
