package server

import (
	"net/http"
	"slices"
	"strings"
	"sync"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing. A path may be registered for several methods; other methods get
// 405 with an Allow header.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware

	mu     sync.Mutex
	routes map[string]*methodTable
}

type methodTable struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

func (m *methodTable) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.mu.RLock()
	h, ok := m.handlers[strings.ToUpper(req.Method)]
	if !ok && req.Method == http.MethodHead {
		h, ok = m.handlers[http.MethodGet]
	}
	allowed := make([]string, 0, len(m.handlers))
	for method := range m.handlers {
		allowed = append(allowed, method)
	}
	m.mu.RUnlock()

	if !ok {
		slices.Sort(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.ServeHTTP(w, req)
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		routes:      make(map[string]*methodTable),
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware only wraps handlers registered after the call.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// The handler is wrapped with all registered middleware.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.routes[path]
	if !ok {
		table = &methodTable{handlers: make(map[string]http.Handler)}
		r.routes[path] = table
		r.mux.Handle(path, table)
	}

	table.mu.Lock()
	table.handlers[strings.ToUpper(method)] = r.Apply(handler)
	table.mu.Unlock()
}

// HandleFunc registers a handler function for the specified HTTP method and path.
func (r *BasicRouter) HandleFunc(method, path string, fn http.HandlerFunc) {
	r.Handle(method, path, fn)
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler for any method; the handler does its
// own method checks.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
