package models

// Registry is the explicit name-to-value mapping that replaces filesystem
// auto-discovery. Views and middleware are registered once at startup under
// dotted names (e.g. "articles.detail", "auth.required") and looked up by
// route mappings or application code. Registration of a duplicate name is
// an error; registries are safe for concurrent lookups after startup.
type Registry interface {
	RegisterView(name string, view View) error
	RegisterMiddleware(name string, mw Middleware) error

	View(name string) (View, bool)
	Middleware(name string) (Middleware, bool)

	// ViewNames returns registered view names in registration order.
	ViewNames() []string
	// MiddlewareNames returns registered middleware names in registration order.
	MiddlewareNames() []string
}
