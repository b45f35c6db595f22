package endpoint

import (
	"context"
	"net/http"
)

type contextKey struct {
	name string
}

var (
	requestKey  = &contextKey{"request"}
	endpointKey = &contextKey{"endpoint"}
)

// EndpointFromContext returns the endpoint a request was routed to.
// It is set by the Router before calling the Dispatcher.
func EndpointFromContext(ctx context.Context) (*Endpoint, bool) {
	ep, ok := ctx.Value(endpointKey).(*Endpoint)
	return ep, ok
}

// RequestFromContext returns the HTTP request from the context.
func RequestFromContext(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(requestKey).(*http.Request); ok {
		return r
	}
	return nil
}

func newContext(ctx context.Context, r *http.Request, ep *Endpoint) context.Context {
	ctx = context.WithValue(ctx, requestKey, r)
	ctx = context.WithValue(ctx, endpointKey, ep)
	return ctx
}
