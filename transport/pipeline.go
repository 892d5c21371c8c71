package transport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopfront/storefront-go/core"
)

// TokenSource supplies the current bearer credential. An empty string
// means the session is unauthenticated and the request goes out bare.
type TokenSource interface {
	CurrentToken() string
}

// AuthFailureHandler is notified when the backend rejects the
// credential. The handler must be safe to call while other flows read
// the token concurrently.
type AuthFailureHandler interface {
	OnAuthFailure(ctx context.Context)
}

// Pipeline wraps a Doer with the two session-level interceptor stages:
//
//  1. Outgoing: attach the current token as a bearer credential.
//  2. Incoming: on an authentication failure, tear the session down
//     before propagating the failure.
//
// Centralizing the teardown here is the point: it runs exactly once per
// failing request no matter which service issued it, and it is the only
// involuntary path by which the session ends.
type Pipeline struct {
	next   Doer
	tokens TokenSource
	onAuth AuthFailureHandler
	logger core.Logger
}

// NewPipeline creates a pipeline over the base transport. The auth
// failure handler is attached later via SetAuthFailureHandler because
// the session manager needs the pipeline to exist first.
func NewPipeline(next Doer, tokens TokenSource, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Pipeline{
		next:   next,
		tokens: tokens,
		logger: logger,
	}
}

// SetAuthFailureHandler registers the session teardown hook.
func (p *Pipeline) SetAuthFailureHandler(h AuthFailureHandler) {
	p.onAuth = h
}

// Execute runs the request through both interceptor stages.
func (p *Pipeline) Execute(ctx context.Context, req *Request, out interface{}) error {
	if p.tokens != nil {
		if token := p.tokens.CurrentToken(); token != "" {
			if req.Header == nil {
				req.Header = http.Header{}
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	err := p.next.Execute(ctx, req, out)
	if err == nil {
		return nil
	}

	if core.IsAuthFailure(err) && p.onAuth != nil {
		p.logger.Warn("Credential rejected, invalidating session", map[string]interface{}{
			"operation": "session_invalidate",
			"method":    req.Method,
			"path":      req.Path,
			"trigger":   "auth_failure_response",
		})
		p.onAuth.OnAuthFailure(ctx)
	}

	return err
}

// Get performs a GET request through the pipeline.
func (p *Pipeline) Get(ctx context.Context, path string, out interface{}) error {
	return p.Execute(ctx, &Request{Method: http.MethodGet, Path: path}, out)
}

// GetQuery performs a GET request with query parameters.
func (p *Pipeline) GetQuery(ctx context.Context, path string, query map[string]string, out interface{}) error {
	req := &Request{Method: http.MethodGet, Path: path}
	if len(query) > 0 {
		req.Query = url.Values{}
		for k, v := range query {
			req.Query.Set(k, v)
		}
	}
	return p.Execute(ctx, req, out)
}

// Post performs a POST request with an optional JSON body.
func (p *Pipeline) Post(ctx context.Context, path string, body, out interface{}) error {
	return p.Execute(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put performs a PUT request with a JSON body.
func (p *Pipeline) Put(ctx context.Context, path string, body, out interface{}) error {
	return p.Execute(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete performs a DELETE request.
func (p *Pipeline) Delete(ctx context.Context, path string, out interface{}) error {
	return p.Execute(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}
