package verify

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-receivers/core"
)

func TestBufferBodyEnforcesLimit(t *testing.T) {
	body, err := BufferBody(context.Background(), strings.NewReader("abcdef"), 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "abcdef" {
		t.Fatalf("expected full body, got %q", body)
	}

	if _, err := BufferBody(context.Background(), strings.NewReader("abcdef"), 3); err == nil {
		t.Fatal("expected oversize body to fail")
	}
}

func TestBufferBodyHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := BufferBody(ctx, strings.NewReader("payload"), 16); err == nil {
		t.Fatal("expected cancelled context to fail the read")
	}
}

func TestRequestFromBuffersBodyOnlyForSignedReceivers(t *testing.T) {
	route := core.RouteContext{ReceiverName: "github", ConfigurationID: "default"}

	signed := httptest.NewRequest("POST", "/hooks/github?code=x", bytes.NewReader([]byte(`{"a":1}`)))
	signed.Header.Set("X-Hub-Signature-256", "sha256=00")

	req, err := RequestFrom(context.Background(), signed, route, signatureReceiver("github"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(req.Body) != `{"a":1}` {
		t.Fatalf("expected buffered body, got %q", req.Body)
	}
	if req.Headers["X-Hub-Signature-256"] != "sha256=00" {
		t.Fatalf("expected flattened headers, got %v", req.Headers)
	}
	if req.Query["code"] != "x" {
		t.Fatalf("expected flattened query, got %v", req.Query)
	}

	unsigned := httptest.NewRequest("POST", "/hooks/devkit?code=x", bytes.NewReader([]byte(`{"a":1}`)))
	req, err = RequestFrom(context.Background(), unsigned, route, staticCodeReceiver("devkit"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Body != nil {
		t.Fatal("expected static-code receiver to skip body buffering")
	}
}
