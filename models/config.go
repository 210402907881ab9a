package models

import (
	"time"
)

// MethodAll is the default-method value meaning a bare HandlerView is
// registered for every supported HTTP method.
const MethodAll = "all"

// Config holds the core configuration for express-unchained.
type Config struct {
	// Core identity
	AppName  string `json:"app_name" toml:"app_name"`
	BasePath string `json:"base_path" toml:"base_path"`

	// DefaultMethod controls how bare HandlerViews outside a MethodView are
	// registered: "all" registers every supported method, a single verb
	// (e.g. "GET") narrows registration to that verb.
	DefaultMethod string `json:"default_method" toml:"default_method" validate:"omitempty,oneof=all GET POST PUT PATCH DELETE HEAD OPTIONS"`

	Server   ServerConfig   `json:"server" toml:"server"`
	Logger   LoggerConfig   `json:"logger" toml:"logger"`
	Render   RenderConfig   `json:"render" toml:"render"`
	Security SecurityConfig `json:"security" toml:"security"`

	RateLimit RateLimitConfig `json:"rate_limit" toml:"rate_limit"`
	EventBus  EventBusConfig  `json:"event_bus" toml:"event_bus"`

	// RouteMappings declares routes by name against the registry, enabling a
	// fully declarative route table in config files. Each mapping references
	// views and middleware registered under Registry names.
	RouteMappings []RouteMapping `json:"route_mappings" toml:"route_mappings"`
}

type ServerConfig struct {
	Addr            string        `json:"addr" toml:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" toml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level string `json:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// RenderConfig selects and configures the template engine wiring. Rendering
// itself is delegated to unrolled/render.
type RenderConfig struct {
	Directory  string   `json:"directory" toml:"directory"`
	Layout     string   `json:"layout" toml:"layout"`
	Extensions []string `json:"extensions" toml:"extensions"`
	// Development reloads templates on every render instead of caching them.
	Development bool `json:"development" toml:"development"`
}

type SecurityConfig struct {
	TrustedHeaders []string   `json:"trusted_headers" toml:"trusted_headers"`
	TrustedProxies []string   `json:"trusted_proxies" toml:"trusted_proxies"`
	CORS           CORSConfig `json:"cors" toml:"cors"`
}

type CORSConfig struct {
	AllowCredentials bool          `json:"allow_credentials" toml:"allow_credentials"`
	AllowedOrigins   []string      `json:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods   []string      `json:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders   []string      `json:"allowed_headers" toml:"allowed_headers"`
	ExposedHeaders   []string      `json:"exposed_headers" toml:"exposed_headers"`
	MaxAge           time.Duration `json:"max_age" toml:"max_age"`
}

type RateLimitConfig struct {
	Enabled      bool          `json:"enabled" toml:"enabled"`
	RequestLimit int           `json:"request_limit" toml:"request_limit" validate:"omitempty,gt=0"`
	WindowLength time.Duration `json:"window_length" toml:"window_length"`
}

type EventBusConfig struct {
	// Prefix is prepended to every event topic, e.g. "unchained".
	Prefix string `json:"prefix" toml:"prefix"`
	// BufferSize is the in-process channel buffer per topic.
	BufferSize int `json:"buffer_size" toml:"buffer_size"`
	// MaxConcurrentHandlers caps handler goroutines across all topics.
	MaxConcurrentHandlers int `json:"max_concurrent_handlers" toml:"max_concurrent_handlers"`
}

// RouteMapping declares one route by registry names instead of values.
//
// Example (TOML):
//
//	[[route_mappings]]
//	path = "/articles/{slug}"
//	view = "articles.detail"
//	middleware = ["auth.required"]
//
//	[[route_mappings]]
//	path = "/articles"
//	middleware = ["auth.required"]
//	[route_mappings.methods]
//	GET = "articles.list"
//	POST = "articles.create"
type RouteMapping struct {
	// Path is the URL pattern (chi syntax).
	Path string `json:"path" toml:"path" mapstructure:"path"`
	// View names a registered View; mutually exclusive with Methods.
	View string `json:"view" toml:"view" mapstructure:"view"`
	// Methods maps HTTP method names to registered View names.
	Methods map[string]string `json:"methods" toml:"methods" mapstructure:"methods"`
	// Middleware names registered middleware applied around the view,
	// declaration order first.
	Middleware []string `json:"middleware" toml:"middleware" mapstructure:"middleware"`
}
