// Package registry implements the explicit name registry that replaces
// filesystem auto-discovery: views and middleware are registered under
// dotted names at startup and resolved by route mappings.
package registry

import (
	"fmt"
	"sync"

	"github.com/robgibbons/express-unchained/models"
)

type registry struct {
	mu sync.RWMutex

	views     map[string]models.View
	viewOrder []string

	middleware      map[string]models.Middleware
	middlewareOrder []string
}

// New creates an empty registry.
func New() models.Registry {
	return &registry{
		views:      make(map[string]models.View),
		middleware: make(map[string]models.Middleware),
	}
}

func (r *registry) RegisterView(name string, view models.View) error {
	if name == "" {
		return fmt.Errorf("registry: view name must not be empty")
	}
	if view == nil {
		return fmt.Errorf("registry: view %q must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.views[name]; exists {
		return fmt.Errorf("registry: view %q already registered", name)
	}
	r.views[name] = view
	r.viewOrder = append(r.viewOrder, name)
	return nil
}

func (r *registry) RegisterMiddleware(name string, mw models.Middleware) error {
	if name == "" {
		return fmt.Errorf("registry: middleware name must not be empty")
	}
	if mw == nil {
		return fmt.Errorf("registry: middleware %q must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.middleware[name]; exists {
		return fmt.Errorf("registry: middleware %q already registered", name)
	}
	r.middleware[name] = mw
	r.middlewareOrder = append(r.middlewareOrder, name)
	return nil
}

func (r *registry) View(name string) (models.View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	view, ok := r.views[name]
	return view, ok
}

func (r *registry) Middleware(name string) (models.Middleware, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mw, ok := r.middleware[name]
	return mw, ok
}

func (r *registry) ViewNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.viewOrder...)
}

func (r *registry) MiddlewareNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.middlewareOrder...)
}
