package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"edenhttp/types"
)

// Handler produces a response body. It takes no request arguments.
type Handler func(ctx context.Context) (string, error)

type Route struct {
	Path        string
	Method      string
	Handler     Handler
	OperationID string
	Hidden      bool
}

type Option func(*Route)

// Hidden keeps a route out of the schema document.
func Hidden() Option {
	return func(r *Route) { r.Hidden = true }
}

type Registry interface {
	Register(path, method, name string, handler Handler, opts ...Option) (Route, error)
	Handle(path, method, name string, handler Handler, opts ...Option) Handler
	Freeze()
	Lookup(path, method string) (Route, bool)
	Methods(path string) []string
	Paths() []string
	Routes() []Route
}

type registry struct {
	mu     sync.RWMutex
	frozen bool
	order  []string
	byPath map[string]*pathRoutes
}

type pathRoutes struct {
	order    []string
	byMethod map[string]Route
}

var (
	ErrDuplicateRoute = fmt.Errorf("route already registered")
	ErrFrozen         = fmt.Errorf("registry is frozen")
	ErrInvalidRoute   = fmt.Errorf("invalid route")
)

func NewRegistry() Registry {
	return &registry{
		byPath: make(map[string]*pathRoutes),
	}
}

// OperationID derives the schema-facing identifier of a handler.
func OperationID(name, method string) string {
	return name + "_" + strings.ToLower(method)
}

func (r *registry) Register(path, method, name string, handler Handler, opts ...Option) (Route, error) {
	m, _ := types.ParseMethod(method)
	key := m.Key()

	if path == "" || key == "" || name == "" || handler == nil {
		return Route{}, fmt.Errorf("%w: path, method, name and handler are required", ErrInvalidRoute)
	}
	if m == types.MethodOPTIONS {
		return Route{}, fmt.Errorf("%w: OPTIONS is answered by the message handler", ErrInvalidRoute)
	}

	route := Route{
		Path:        path,
		Method:      key,
		Handler:     handler,
		OperationID: OperationID(name, key),
	}
	for _, opt := range opts {
		opt(&route)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return Route{}, ErrFrozen
	}

	pr, ok := r.byPath[path]
	if !ok {
		pr = &pathRoutes{byMethod: make(map[string]Route)}
		r.byPath[path] = pr
		r.order = append(r.order, path)
	}
	if _, exists := pr.byMethod[key]; exists {
		return Route{}, fmt.Errorf("%w: %s %s", ErrDuplicateRoute, m, path)
	}

	pr.byMethod[key] = route
	pr.order = append(pr.order, key)
	return route, nil
}

// Handle registers handler and hands it back unchanged so it stays callable on
// its own. It panics on registration errors, which are programming errors
// during the init pass.
func (r *registry) Handle(path, method, name string, handler Handler, opts ...Option) Handler {
	if _, err := r.Register(path, method, name, handler, opts...); err != nil {
		panic(err)
	}
	return handler
}

func (r *registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *registry) Lookup(path, method string) (Route, bool) {
	m, _ := types.ParseMethod(method)

	r.mu.RLock()
	defer r.mu.RUnlock()

	pr, ok := r.byPath[path]
	if !ok {
		return Route{}, false
	}
	route, ok := pr.byMethod[m.Key()]
	return route, ok
}

// Methods lists the lower-case methods registered for path in registration
// order. It is nil for an unknown path.
func (r *registry) Methods(path string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pr, ok := r.byPath[path]
	if !ok {
		return nil
	}
	methods := make([]string, len(pr.order))
	copy(methods, pr.order)
	return methods
}

func (r *registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, len(r.order))
	copy(paths, r.order)
	return paths
}

func (r *registry) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]Route, 0, len(r.order))
	for _, path := range r.order {
		pr := r.byPath[path]
		for _, method := range pr.order {
			routes = append(routes, pr.byMethod[method])
		}
	}
	return routes
}
