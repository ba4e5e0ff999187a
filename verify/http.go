package verify

import (
	"context"
	"io"
	"net/http"

	"github.com/goliatone/go-receivers/core"
)

// DefaultMaxBodyBytes caps how much of a request body is buffered for
// signature computation when the caller does not configure a limit.
const DefaultMaxBodyBytes = int64(1 << 20)

// BufferBody reads the full request body into memory, honoring context
// cancellation. Signature verification needs the exact raw bytes, so the
// body is buffered once here and reused for both HMAC input and any
// downstream decoding.
func BufferBody(ctx context.Context, r io.Reader, maxBytes int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, verifyInternal("reading request body failed", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, verifyBadInput("request body exceeds the configured limit", nil)
	}
	return body, nil
}

// RequestFrom converts a matched *http.Request into the transport-neutral
// inbound shape. The body is only buffered for receivers that sign it;
// static-code and unverified receivers skip the read entirely so their
// handlers can stream it.
func RequestFrom(ctx context.Context, r *http.Request, route core.RouteContext, meta core.ReceiverMetadata, maxBytes int64) (core.InboundRequest, error) {
	req := core.InboundRequest{
		ReceiverName:    route.ReceiverName,
		ConfigurationID: route.ConfigurationID,
		Method:          r.Method,
		Headers:         flattenHeaders(r.Header),
		Query:           flattenQuery(r),
	}

	needsBody := meta.Strategy == core.StrategyBodySignature &&
		!(meta.ShortCircuitGetRequests && r.Method == http.MethodGet)
	if needsBody {
		body, err := BufferBody(ctx, r.Body, maxBytes)
		if err != nil {
			return core.InboundRequest{}, err
		}
		req.Body = body
	}
	return req, nil
}

func flattenHeaders(header http.Header) map[string]string {
	if len(header) == 0 {
		return nil
	}
	flat := make(map[string]string, len(header))
	for name, values := range header {
		if len(values) > 0 {
			flat[name] = values[0]
		}
	}
	return flat
}

func flattenQuery(r *http.Request) map[string]string {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	flat := make(map[string]string, len(query))
	for name, values := range query {
		if len(values) > 0 {
			flat[name] = values[0]
		}
	}
	return flat
}
