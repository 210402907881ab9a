package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/robgibbons/express-unchained/env"
	"github.com/robgibbons/express-unchained/models"
)

var validate = validator.New()

type Option func(*models.Config)

// NewConfig builds a Config using functional options with sensible defaults.
// Panics on invalid configuration: composition must never reach the router
// with a config that cannot be served.
func NewConfig(options ...Option) *models.Config {
	// Define sensible defaults first
	config := &models.Config{
		AppName:       "express-unchained",
		BasePath:      "",
		DefaultMethod: models.MethodAll,
		Server: models.ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logger: models.LoggerConfig{},
		Render: models.RenderConfig{
			Directory:  "templates",
			Extensions: []string{".tmpl", ".html"},
		},
		Security: models.SecurityConfig{
			TrustedHeaders: []string{},
			TrustedProxies: []string{},
			CORS: models.CORSConfig{
				AllowCredentials: false,
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"OPTIONS", "GET", "POST", "PUT", "PATCH", "DELETE"},
				AllowedHeaders:   []string{"Authorization", "Content-Type"},
				ExposedHeaders:   []string{},
				MaxAge:           24 * time.Hour,
			},
		},
		RateLimit: models.RateLimitConfig{
			Enabled:      false,
			RequestLimit: 100,
			WindowLength: time.Minute,
		},
		EventBus: models.EventBusConfig{
			Prefix:                "unchained",
			BufferSize:            100,
			MaxConcurrentHandlers: 16,
		},
		RouteMappings: []models.RouteMapping{},
	}

	// Apply the options - they override defaults only if non-zero/non-empty
	for _, option := range options {
		option(config)
	}

	// Validate BasePath format
	if config.BasePath != "" && config.BasePath[0] != '/' {
		panic(fmt.Errorf("BasePath must start with '/', got: %q", config.BasePath))
	}

	config.DefaultMethod = normalizeDefaultMethod(config.DefaultMethod)

	if err := validate.Struct(config); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	return config
}

func normalizeDefaultMethod(method string) string {
	if method == "" || strings.EqualFold(method, models.MethodAll) {
		return models.MethodAll
	}
	return strings.ToUpper(method)
}

func WithAppName(name string) Option {
	return func(c *models.Config) {
		if name != "" {
			c.AppName = name
		}
	}
}

func WithBasePath(path string) Option {
	return func(c *models.Config) {
		if envValue := os.Getenv(env.EnvBasePath); envValue != "" {
			c.BasePath = envValue
		} else if path != "" {
			c.BasePath = path
		}
	}
}

// WithDefaultMethod sets the method bare HandlerViews register for:
// models.MethodAll or a single verb.
func WithDefaultMethod(method string) Option {
	return func(c *models.Config) {
		if envValue := os.Getenv(env.EnvDefaultMethod); envValue != "" {
			c.DefaultMethod = envValue
		} else if method != "" {
			c.DefaultMethod = method
		}
	}
}

func WithServer(server models.ServerConfig) Option {
	return func(c *models.Config) {
		if server.Addr != "" {
			c.Server.Addr = server.Addr
		}
		if server.ReadTimeout != 0 {
			c.Server.ReadTimeout = server.ReadTimeout
		}
		if server.WriteTimeout != 0 {
			c.Server.WriteTimeout = server.WriteTimeout
		}
		if server.ShutdownTimeout != 0 {
			c.Server.ShutdownTimeout = server.ShutdownTimeout
		}
	}
}

func WithLogger(logger models.LoggerConfig) Option {
	return func(c *models.Config) {
		if envValue := os.Getenv(env.EnvLogLevel); envValue != "" {
			c.Logger.Level = envValue
		} else if logger.Level != "" {
			c.Logger.Level = logger.Level
		}
	}
}

func WithRender(render models.RenderConfig) Option {
	return func(c *models.Config) {
		if envValue := os.Getenv(env.EnvTemplateDir); envValue != "" {
			c.Render.Directory = envValue
		} else if render.Directory != "" {
			c.Render.Directory = render.Directory
		}
		if render.Layout != "" {
			c.Render.Layout = render.Layout
		}
		if len(render.Extensions) > 0 {
			c.Render.Extensions = render.Extensions
		}
		c.Render.Development = render.Development
	}
}

func WithSecurity(security models.SecurityConfig) Option {
	return func(c *models.Config) {
		if len(security.TrustedHeaders) > 0 {
			c.Security.TrustedHeaders = security.TrustedHeaders
		}
		if len(security.TrustedProxies) > 0 {
			c.Security.TrustedProxies = security.TrustedProxies
		}
		if len(security.CORS.AllowedOrigins) > 0 {
			c.Security.CORS = security.CORS
		}
	}
}

func WithRateLimit(rateLimit models.RateLimitConfig) Option {
	return func(c *models.Config) {
		c.RateLimit.Enabled = rateLimit.Enabled
		if rateLimit.RequestLimit > 0 {
			c.RateLimit.RequestLimit = rateLimit.RequestLimit
		}
		if rateLimit.WindowLength > 0 {
			c.RateLimit.WindowLength = rateLimit.WindowLength
		}
	}
}

func WithEventBus(eventBus models.EventBusConfig) Option {
	return func(c *models.Config) {
		if eventBus.Prefix != "" {
			c.EventBus.Prefix = eventBus.Prefix
		}
		if eventBus.BufferSize > 0 {
			c.EventBus.BufferSize = eventBus.BufferSize
		}
		if eventBus.MaxConcurrentHandlers > 0 {
			c.EventBus.MaxConcurrentHandlers = eventBus.MaxConcurrentHandlers
		}
	}
}

func WithRouteMappings(mappings []models.RouteMapping) Option {
	return func(c *models.Config) {
		if len(mappings) > 0 {
			c.RouteMappings = mappings
		}
	}
}

// LoadFile reads a TOML config file into a raw Config. The result is
// usually fed back through NewConfig via With* options so defaults and
// validation still apply.
func LoadFile(path string) (models.Config, error) {
	var config models.Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return models.Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return config, nil
}

// DecodeRouteMappings converts generically-typed mapping declarations (as
// produced by config loaders that hand back map[string]any) into typed
// RouteMappings.
func DecodeRouteMappings(raw any) ([]models.RouteMapping, error) {
	var mappings []models.RouteMapping

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &mappings,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("config: decode route mappings: %w", err)
	}

	return mappings, nil
}
