// Package transport executes backend REST requests for the storefront
// client. It resolves paths against a single base URL, handles JSON
// encoding on both sides of the wire, and classifies failures into the
// client's error taxonomy. The Pipeline in this package layers the
// cross-cutting session behaviors (bearer injection, auth-failure
// interception) on top of the raw HTTP transport.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopfront/storefront-go/core"
)

const maxResponseBytes = 8 << 20

// Request describes a single backend call before execution.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Header http.Header
}

// Doer executes a single backend request and decodes the JSON response
// into out. Implementations must classify failures as core.APIError.
type Doer interface {
	Execute(ctx context.Context, req *Request, out interface{}) error
}

// HTTP is the base transport. It performs the network round trip and
// nothing else: no credentials, no retries, no session handling.
type HTTP struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    core.Logger
	tracer    trace.Tracer
}

// NewHTTP creates the base transport from configuration.
func NewHTTP(cfg *core.Config, logger core.Logger) *HTTP {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Telemetry.InstrumentHTTP {
		client.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	var tracer trace.Tracer
	if cfg.Telemetry.TracingEnabled {
		tracer = otel.Tracer("github.com/shopfront/storefront-go/transport")
	}

	return &HTTP{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    client,
		logger:    logger,
		tracer:    tracer,
	}
}

// Execute performs the round trip described by req.
func (t *HTTP) Execute(ctx context.Context, req *Request, out interface{}) error {
	op := fmt.Sprintf("%s %s", req.Method, req.Path)
	requestID := uuid.NewString()

	if t.tracer != nil {
		var span trace.Span
		ctx, span = t.tracer.Start(ctx, "storefront.request",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.path", req.Path),
				attribute.String("request.id", requestID),
			))
		defer span.End()
	}

	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return &core.APIError{Op: op, Kind: core.KindTransport, Err: err}
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	t.logger.Debug("Request initiated", map[string]interface{}{
		"operation":  "http_request",
		"method":     req.Method,
		"path":       req.Path,
		"request_id": requestID,
	})
	startTime := time.Now()

	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Error("Request failed - send error", map[string]interface{}{
			"operation":  "http_request_error",
			"method":     req.Method,
			"path":       req.Path,
			"request_id": requestID,
			"error":      err.Error(),
			"phase":      "request_execution",
		})
		return &core.APIError{
			Op:   op,
			Kind: core.KindTransport,
			Err:  fmt.Errorf("%w: %v", core.ErrConnectionFailed, err),
		}
	}
	defer func() {
		_ = resp.Body.Close() // Error can be safely ignored as we've read the body
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		t.logger.Error("Request failed - read response error", map[string]interface{}{
			"operation":  "http_request_error",
			"method":     req.Method,
			"path":       req.Path,
			"request_id": requestID,
			"error":      err.Error(),
			"phase":      "response_read",
		})
		return &core.APIError{Op: op, Kind: core.KindTransport, Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := classifyStatus(op, resp.StatusCode, body)
		t.logger.Warn("Request failed - API error", map[string]interface{}{
			"operation":   "http_request_error",
			"method":      req.Method,
			"path":        req.Path,
			"request_id":  requestID,
			"status_code": resp.StatusCode,
			"kind":        string(apiErr.Kind),
			"phase":       "api_response",
		})
		return apiErr
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			t.logger.Error("Request failed - parse response error", map[string]interface{}{
				"operation":  "http_request_error",
				"method":     req.Method,
				"path":       req.Path,
				"request_id": requestID,
				"error":      err.Error(),
				"phase":      "response_parse",
			})
			return &core.APIError{
				Op:      op,
				Kind:    core.KindTransport,
				Message: "malformed response body",
				Err:     err,
			}
		}
	}

	t.logger.Debug("Request completed", map[string]interface{}{
		"operation":   "http_response",
		"method":      req.Method,
		"path":        req.Path,
		"request_id":  requestID,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	return nil
}

func (t *HTTP) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target := t.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	return httpReq, nil
}

// classifyStatus maps an HTTP status band onto the error taxonomy.
// 401 means the session credential was rejected; other 4xx are input
// problems surfaced verbatim; 404 is a missing resource; everything
// else is a transport-level failure.
func classifyStatus(op string, status int, body []byte) *core.APIError {
	msg := serverMessage(body)

	switch {
	case status == http.StatusUnauthorized:
		return &core.APIError{
			Op:     op,
			Kind:   core.KindAuthentication,
			Status: status,
			Err:    core.ErrAuthenticationFailed,
		}
	case status == http.StatusNotFound:
		return &core.APIError{
			Op:      op,
			Kind:    core.KindNotFound,
			Status:  status,
			Message: msg,
		}
	case status >= 400 && status < 500:
		return &core.APIError{
			Op:      op,
			Kind:    core.KindValidation,
			Status:  status,
			Message: msg,
		}
	default:
		return &core.APIError{
			Op:      op,
			Kind:    core.KindTransport,
			Status:  status,
			Message: msg,
			Err:     core.ErrRequestFailed,
		}
	}
}

// serverMessage extracts a human-readable message from an error body.
// Backends answer with {"message": ...} or {"error": ...}; anything
// else is surfaced as the raw (trimmed) body.
func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512] + "...(truncated)"
	}
	return msg
}
