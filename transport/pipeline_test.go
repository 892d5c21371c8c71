package transport

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/storefront-go/core"
)

// stubDoer records the requests it sees and returns a scripted error.
type stubDoer struct {
	lastReq *Request
	calls   int
	err     error
}

func (s *stubDoer) Execute(ctx context.Context, req *Request, out interface{}) error {
	s.lastReq = req
	s.calls++
	return s.err
}

// stubTokens is a fixed TokenSource.
type stubTokens struct {
	token string
}

func (s *stubTokens) CurrentToken() string { return s.token }

// stubAuthHandler counts invalidation calls.
type stubAuthHandler struct {
	invalidations int
}

func (s *stubAuthHandler) OnAuthFailure(ctx context.Context) { s.invalidations++ }

func TestPipelineAttachesBearerToken(t *testing.T) {
	next := &stubDoer{}
	p := NewPipeline(next, &stubTokens{token: "T1"}, nil)

	err := p.Get(context.Background(), "/cart", nil)
	require.NoError(t, err)

	require.NotNil(t, next.lastReq)
	assert.Equal(t, "Bearer T1", next.lastReq.Header.Get("Authorization"))
}

func TestPipelineSendsUnauthenticatedWithoutToken(t *testing.T) {
	next := &stubDoer{}
	p := NewPipeline(next, &stubTokens{token: ""}, nil)

	require.NoError(t, p.Get(context.Background(), "/products", nil))
	assert.Empty(t, next.lastReq.Header.Get("Authorization"))
}

func TestPipelineInvalidatesSessionOnAuthFailure(t *testing.T) {
	authErr := &core.APIError{Kind: core.KindAuthentication, Err: core.ErrAuthenticationFailed}
	next := &stubDoer{err: authErr}
	handler := &stubAuthHandler{}

	p := NewPipeline(next, &stubTokens{token: "stale"}, nil)
	p.SetAuthFailureHandler(handler)

	err := p.Get(context.Background(), "/cart", nil)

	require.Error(t, err)
	assert.True(t, core.IsAuthFailure(err), "failure must propagate to the caller")
	assert.Equal(t, 1, handler.invalidations, "invalidation must run exactly once per failing request")
}

func TestPipelinePassesOtherFailuresThrough(t *testing.T) {
	tests := []struct {
		name string
		err  *core.APIError
	}{
		{"Validation", &core.APIError{Kind: core.KindValidation, Message: "bad input"}},
		{"NotFound", &core.APIError{Kind: core.KindNotFound}},
		{"Transport", &core.APIError{Kind: core.KindTransport, Err: core.ErrRequestFailed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &stubDoer{err: tt.err}
			handler := &stubAuthHandler{}
			p := NewPipeline(next, &stubTokens{token: "T1"}, nil)
			p.SetAuthFailureHandler(handler)

			err := p.Get(context.Background(), "/x", nil)

			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, handler.invalidations, "only auth failures tear the session down")
		})
	}
}

func TestPipelineSuccessLeavesSessionAlone(t *testing.T) {
	next := &stubDoer{}
	handler := &stubAuthHandler{}
	p := NewPipeline(next, &stubTokens{token: "T1"}, nil)
	p.SetAuthFailureHandler(handler)

	require.NoError(t, p.Post(context.Background(), "/orders", nil, nil))
	assert.Zero(t, handler.invalidations)
}

func TestPipelineHelpers(t *testing.T) {
	next := &stubDoer{}
	p := NewPipeline(next, nil, nil)
	ctx := context.Background()

	require.NoError(t, p.GetQuery(ctx, "/products/search", map[string]string{"keyword": "widget"}, nil))
	assert.Equal(t, http.MethodGet, next.lastReq.Method)
	assert.Equal(t, "widget", next.lastReq.Query.Get("keyword"))

	require.NoError(t, p.Put(ctx, "/users/me", map[string]string{"firstName": "Ada"}, nil))
	assert.Equal(t, http.MethodPut, next.lastReq.Method)

	require.NoError(t, p.Delete(ctx, "/cart", nil))
	assert.Equal(t, http.MethodDelete, next.lastReq.Method)
}
