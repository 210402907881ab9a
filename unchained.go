// Package unchained is a convention-based routing and middleware
// composition layer over chi. Routes are declared once in an ordered
// URLTable mapping URL patterns to Views (single handler, per-method map,
// or middleware-wrapped nesting of either); the table is composed into
// flat (method, pattern, chain) registrations and installed on a chi
// router at startup. Malformed declarations abort registration before the
// server accepts a single request.
package unchained

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/robgibbons/express-unchained/events"
	"github.com/robgibbons/express-unchained/internal/bootstrap"
	"github.com/robgibbons/express-unchained/internal/compose"
	"github.com/robgibbons/express-unchained/internal/registry"
	"github.com/robgibbons/express-unchained/internal/util"
	"github.com/robgibbons/express-unchained/middleware"
	"github.com/robgibbons/express-unchained/models"
)

// AppOptions contains optional collaborators for an App.
type AppOptions struct {
	// Registry resolves named views and middleware for config-declared
	// route mappings. A fresh registry is created when nil.
	Registry models.Registry
	// EventBus receives lifecycle events (route.registered, app.ready).
	// No events are published when nil.
	EventBus models.EventBus
}

// DefaultAppOptions returns app options with sensible defaults.
func DefaultAppOptions() *AppOptions {
	return &AppOptions{}
}

// App wraps chi.Router and owns route composition and installation.
type App struct {
	config   *models.Config
	logger   models.Logger
	router   chi.Router
	registry models.Registry
	bus      models.EventBus
	renderer *render.Render

	registrations []models.Registration
	installed     map[string]struct{}
}

// New creates an App with chi as the underlying router.
// opts can be nil to use default options.
func New(config *models.Config, logger models.Logger, opts *AppOptions) *App {
	if opts == nil {
		opts = DefaultAppOptions()
	}

	r := chi.NewRouter()

	// Set default NotFound handler
	r.NotFound(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		util.JSONResponse(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
	}))

	// Set default MethodNotAllowed handler
	r.MethodNotAllowed(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}))

	util.ValidateTrustedHeadersAndProxies(
		logger,
		config.Security.TrustedHeaders,
		config.Security.TrustedProxies,
	)

	if config.RateLimit.Enabled {
		r.Use(middleware.RateLimit(config.RateLimit))
	}

	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}

	return &App{
		config:    config,
		logger:    logger,
		router:    r,
		registry:  reg,
		bus:       opts.EventBus,
		renderer:  bootstrap.InitRenderer(config.Render),
		installed: make(map[string]struct{}),
	}
}

// NewRegistry creates a standalone view/middleware registry, for apps that
// want to populate it before constructing the App.
func NewRegistry() models.Registry {
	return registry.New()
}

// Router returns the underlying chi.Router for direct access.
func (a *App) Router() chi.Router {
	return a.router
}

// Registry returns the registry used to resolve route mappings.
func (a *App) Registry() models.Registry {
	return a.registry
}

// Renderer returns the configured template engine.
func (a *App) Renderer() *render.Render {
	return a.renderer
}

// Use registers global middleware with chi. Must be called before any
// route is registered; chi rejects later calls.
func (a *App) Use(mw ...models.Middleware) {
	for _, m := range mw {
		a.router.Use(m)
	}
}

// Mount attaches a plain http.Handler under a pattern, bypassing
// composition.
func (a *App) Mount(pattern string, handler http.Handler) {
	a.router.Mount(pattern, handler)
}

// RegisterTable composes and installs a route table. Composition is all or
// nothing: on any malformed View the error identifies the offending
// pattern and no route from the table is installed.
func (a *App) RegisterTable(table *models.URLTable) error {
	regs, err := compose.ResolveTable(table, a.config.DefaultMethod)
	if err != nil {
		return err
	}

	// Cross-table duplicates are as fatal as duplicates within one table.
	for _, reg := range regs {
		key := reg.Method + " " + a.config.BasePath + reg.Pattern
		if _, dup := a.installed[key]; dup {
			return &compose.Error{
				Pattern: reg.Pattern,
				Reason:  "method " + reg.Method + " already registered by an earlier table",
			}
		}
	}

	for _, reg := range regs {
		a.install(reg)
		a.installed[reg.Method+" "+a.config.BasePath+reg.Pattern] = struct{}{}
		a.publishRouteRegistered(reg)
	}

	a.registrations = append(a.registrations, regs...)
	return nil
}

// RegisterMappings builds a table from the config-declared route mappings,
// resolving names against the registry, and installs it.
func (a *App) RegisterMappings() error {
	table, err := BuildTable(a.config.RouteMappings, a.registry)
	if err != nil {
		return err
	}
	return a.RegisterTable(table)
}

// Routes returns the installed registrations in installation order.
func (a *App) Routes() []models.Registration {
	return append([]models.Registration(nil), a.registrations...)
}

// Ready publishes the app.ready lifecycle event. Call it once after all
// tables are registered, before serving.
func (a *App) Ready(ctx context.Context) error {
	if a.bus == nil {
		return nil
	}

	payload, err := json.Marshal(events.AppReadyPayload{
		AppName: a.config.AppName,
		Routes:  len(a.registrations),
	})
	if err != nil {
		return err
	}

	return a.bus.Publish(ctx, models.Event{
		Type:    events.EventAppReady,
		Payload: payload,
	})
}

// Handler returns the configured HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// ServeHTTP implements http.Handler for testing and direct use.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) publishRouteRegistered(reg models.Registration) {
	if a.bus == nil {
		return
	}

	payload, err := json.Marshal(events.RouteRegisteredPayload{
		Method:  reg.Method,
		Pattern: a.config.BasePath + reg.Pattern,
	})
	if err != nil {
		a.logger.Error("failed to marshal route event", "error", err)
		return
	}

	if err := a.bus.Publish(context.Background(), models.Event{
		Type:    events.EventRouteRegistered,
		Payload: payload,
	}); err != nil {
		a.logger.Error("failed to publish route event", "error", err)
	}
}
