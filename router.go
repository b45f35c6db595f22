package endpoint

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/gorilla/schema"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Dispatcher invokes methods on a routed endpoint. The Router resolves the
// endpoint and leaves decoding, invocation and encoding to the Dispatcher.
// The endpoint is available from the request context via
// EndpointFromContext.
//
// A Dispatcher that returns an error must not have written to w; the Router
// maps the error through its ErrorTransformer and writes the error envelope.
type Dispatcher interface {
	Dispatch(w http.ResponseWriter, r *http.Request, ep *Endpoint) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(w http.ResponseWriter, r *http.Request, ep *Endpoint) error

func (f DispatcherFunc) Dispatch(w http.ResponseWriter, r *http.Request, ep *Endpoint) error {
	return f(w, r, ep)
}

// DiscoveryParams are the query parameters accepted by discovery requests.
type DiscoveryParams struct {
	// Pretty indents the JSON document.
	Pretty bool `schema:"pretty"`
}

// Router is the routing table for endpoints.
// Requests are matched by exact comparison of their normalized URL path
// against Endpoint.Path; there is no prefix matching.
// Use Handler() to get an http.Handler for use with http.ListenAndServe.
type Router struct {
	mu               sync.RWMutex
	endpoints        map[string]*Endpoint
	dispatcher       Dispatcher
	errorTransformer ErrorTransformer
	middlewares      []func(http.Handler) http.Handler
	logger           *slog.Logger
	metrics          *Metrics
}

func NewRouter() *Router {
	return &Router{
		endpoints: make(map[string]*Endpoint),
		metrics:   NopMetrics(),
	}
}

// WithLogger sets a custom logger for the router.
// If not set, slog.Default() will be used.
func (rt *Router) WithLogger(logger *slog.Logger) *Router {
	rt.logger = logger
	return rt
}

// WithMiddleware adds an HTTP middleware to wrap the router.
// Middleware is applied in the order added (first added is outermost).
func (rt *Router) WithMiddleware(mw func(http.Handler) http.Handler) *Router {
	rt.middlewares = append(rt.middlewares, mw)
	return rt
}

// WithDispatcher sets the Dispatcher that receives non-discovery requests.
// Without one, such requests fail with method_not_allowed.
func (rt *Router) WithDispatcher(d Dispatcher) *Router {
	rt.dispatcher = d
	return rt
}

// WithErrorTransformer sets the function that maps Dispatcher errors and
// recovered panics to an *Error. DefaultErrorTransformer is used when it is
// not set or returns nil.
func (rt *Router) WithErrorTransformer(fn ErrorTransformer) *Router {
	rt.errorTransformer = fn
	return rt
}

// WithMetrics sets the metrics sink. The default, and nil, discard everything.
func (rt *Router) WithMetrics(m *Metrics) *Router {
	if m == nil {
		m = NopMetrics()
	}
	rt.metrics = m
	rt.mu.RLock()
	m.RegisteredEndpoints.Set(float64(len(rt.endpoints)))
	rt.mu.RUnlock()
	return rt
}

func (rt *Router) transformError(err error) *Error {
	if rt.errorTransformer != nil {
		if epErr := rt.errorTransformer(err); epErr != nil {
			return epErr
		}
	}
	return DefaultErrorTransformer(err)
}

func (rt *Router) log() *slog.Logger {
	if rt.logger == nil {
		return slog.Default()
	}
	return rt.logger
}

// Register adds ep to the routing table. It fails with already_exists if
// another endpoint is registered at the same path; registering the same
// *Endpoint twice is a no-op.
func (rt *Router) Register(ep *Endpoint) error {
	if ep == nil {
		return NewError(CodeInvalidArgument, "nil endpoint")
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if existing, ok := rt.endpoints[ep.Path()]; ok {
		if existing == ep {
			return nil
		}
		return Errorf(CodeAlreadyExists, "path %s is already routed to endpoint %q", ep.Path(), existing.Name()).
			WithDetails(map[string]any{
				"path":     ep.Path(),
				"existing": existing.Name(),
				"endpoint": ep.Name(),
			})
	}

	rt.endpoints[ep.Path()] = ep
	rt.metrics.RegisteredEndpoints.Set(float64(len(rt.endpoints)))
	rt.log().Debug("endpoint registered",
		slog.String("endpoint", ep.Name()),
		slog.String("path", ep.Path()))
	return nil
}

// MustRegister is like Register but panics on error.
func (rt *Router) MustRegister(ep *Endpoint) {
	if err := rt.Register(ep); err != nil {
		panic(fmt.Sprintf("endpoint: %v", err))
	}
}

// Unregister removes the endpoint routed at the normalized form of rawPath.
// It reports whether an endpoint was removed.
func (rt *Router) Unregister(rawPath string) bool {
	path := NormalizePath(rawPath)

	rt.mu.Lock()
	defer rt.mu.Unlock()

	ep, ok := rt.endpoints[path]
	if !ok {
		return false
	}
	delete(rt.endpoints, path)
	rt.metrics.RegisteredEndpoints.Set(float64(len(rt.endpoints)))
	rt.log().Debug("endpoint unregistered",
		slog.String("endpoint", ep.Name()),
		slog.String("path", path))
	return true
}

// Lookup returns the endpoint routed at the normalized form of rawPath.
func (rt *Router) Lookup(rawPath string) (*Endpoint, bool) {
	path := NormalizePath(rawPath)

	rt.mu.RLock()
	defer rt.mu.RUnlock()

	ep, ok := rt.endpoints[path]
	return ep, ok
}

// Endpoints returns the registered endpoints sorted by path.
func (rt *Router) Endpoints() []*Endpoint {
	rt.mu.RLock()
	eps := make([]*Endpoint, 0, len(rt.endpoints))
	for _, ep := range rt.endpoints {
		eps = append(eps, ep)
	}
	rt.mu.RUnlock()

	sort.Slice(eps, func(i, j int) bool {
		return eps[i].Path() < eps[j].Path()
	})
	return eps
}

// Handler returns an http.Handler for use with http.ListenAndServe or other
// HTTP servers. The returned handler includes all configured middleware.
//
// GET and HEAD requests receive the endpoint's discovery document. Other
// methods go to the Dispatcher.
func (rt *Router) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(rt.serveHTTP)
	// Apply middleware in reverse order so first added is outermost
	for i := len(rt.middlewares) - 1; i >= 0; i-- {
		h = rt.middlewares[i](h)
	}
	return h
}

// IndexHandler returns an http.Handler that serves the discovery documents
// of every registered endpoint, sorted by path.
func (rt *Router) IndexHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected GET", req.Method), rt.logger)
			return
		}
		var params DiscoveryParams
		if err := schemaDecoder.Decode(&params, req.URL.Query()); err != nil {
			writeError(w, Errorf(CodeInvalidArgument, "failed to decode query: %v", err), rt.logger)
			return
		}

		eps := rt.Endpoints()
		docs := make([]Descriptor, len(eps))
		for i, ep := range eps {
			docs[i] = ep.Describe()
		}
		rt.writeResult(w, docs, params.Pretty)
	})
}

// serveHTTP handles incoming requests (internal, called via Handler()).
func (rt *Router) serveHTTP(w http.ResponseWriter, req *http.Request) {
	path := NormalizePath(req.URL.EscapedPath())

	defer func() {
		if rec := recover(); rec != nil {
			rt.metrics.Requests.With("path", path, "outcome", outcomePanic).Add(1)
			rt.log().Error("PANIC recovered",
				slog.String("path", path),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			var err error
			if recErr, ok := rec.(error); ok {
				err = fmt.Errorf("internal server error (panic): %w", recErr)
			} else {
				err = fmt.Errorf("internal server error (panic): %v", rec)
			}
			writeError(w, rt.transformError(err), rt.logger)
		}
	}()

	ep, ok := rt.Lookup(path)
	if !ok {
		// Unmatched paths share one label value to bound cardinality.
		rt.metrics.Requests.With("path", "", "outcome", outcomeNotFound).Add(1)
		writeError(w, NewError(CodeNotFound, "endpoint not found").WithDetail("path", path), rt.logger)
		return
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		rt.metrics.Requests.With("path", path, "outcome", outcomeDiscovery).Add(1)
		rt.serveDiscovery(w, req, ep)
	default:
		if rt.dispatcher == nil {
			rt.metrics.Requests.With("path", path, "outcome", outcomeMethodNotAllowed).Add(1)
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected GET", req.Method), rt.logger)
			return
		}
		rt.metrics.Requests.With("path", path, "outcome", outcomeDispatch).Add(1)
		req = req.WithContext(newContext(req.Context(), req, ep))
		if err := rt.dispatcher.Dispatch(w, req, ep); err != nil {
			epErr := rt.transformError(err)
			rt.log().Debug("dispatch failed",
				slog.String("path", path),
				slog.String("code", string(epErr.Code)),
				slog.Any("error", err))
			writeError(w, epErr, rt.logger)
		}
	}
}

func (rt *Router) serveDiscovery(w http.ResponseWriter, req *http.Request, ep *Endpoint) {
	var params DiscoveryParams
	if err := schemaDecoder.Decode(&params, req.URL.Query()); err != nil {
		writeError(w, Errorf(CodeInvalidArgument, "failed to decode query: %v", err), rt.logger)
		return
	}
	rt.writeResult(w, ep.Describe(), params.Pretty)
}

func (rt *Router) writeResult(w http.ResponseWriter, result any, pretty bool) {
	data, err := marshalResponse(result, pretty)
	if err != nil {
		rt.log().Error("failed to encode response", slog.Any("error", err))
		writeError(w, NewError(CodeInternal, "failed to encode response"), rt.logger)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		rt.log().Debug("failed to write response", slog.Any("error", err))
	}
}
