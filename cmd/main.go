package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	unchained "github.com/robgibbons/express-unchained"
	unchainedconfig "github.com/robgibbons/express-unchained/config"
	unchainedenv "github.com/robgibbons/express-unchained/env"
	"github.com/robgibbons/express-unchained/internal/util"
	"github.com/robgibbons/express-unchained/middleware"
	"github.com/robgibbons/express-unchained/models"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Run the express-unchained demo server in standalone mode
func main() {
	if err := godotenv.Load(); err != nil {
		if os.Getenv(unchainedenv.EnvGoEnvironment) != "production" {
			log.Println("No .env file found, using process environment")
		}
	}

	// Load configuration from TOML file if available
	fileConfig := loadConfigFromFile()

	config := unchainedconfig.NewConfig(
		unchainedconfig.WithAppName(fileConfig.AppName),
		unchainedconfig.WithBasePath(fileConfig.BasePath),
		unchainedconfig.WithDefaultMethod(fileConfig.DefaultMethod),
		unchainedconfig.WithServer(fileConfig.Server),
		unchainedconfig.WithLogger(fileConfig.Logger),
		unchainedconfig.WithRender(fileConfig.Render),
		unchainedconfig.WithSecurity(fileConfig.Security),
		unchainedconfig.WithRateLimit(fileConfig.RateLimit),
		unchainedconfig.WithEventBus(fileConfig.EventBus),
		unchainedconfig.WithRouteMappings(fileConfig.RouteMappings),
	)

	logger := unchained.InitLogger(config)
	bus := unchained.InitEventBus(config)
	defer bus.Close()

	registry := unchained.NewRegistry()
	registerDemoViews(registry, logger)

	app := unchained.New(config, logger, &unchained.AppOptions{
		Registry: registry,
		EventBus: bus,
	})

	app.Use(
		middleware.RequestID(),
		middleware.RealIP(logger, config.Security),
		middleware.AccessLog(logger),
		middleware.Recovery(logger),
		middleware.CORS(config.Security.CORS),
	)

	// Config-declared routes resolved through the registry
	if len(config.RouteMappings) > 0 {
		if err := app.RegisterMappings(); err != nil {
			logger.Error("Route mappings are invalid", "error", err)
			os.Exit(1)
		}
	}

	// Code-declared routes
	if err := app.RegisterTable(demoTable(app)); err != nil {
		logger.Error("Route table is invalid", "error", err)
		os.Exit(1)
	}

	if err := app.Ready(context.Background()); err != nil {
		logger.Error("Failed to publish ready event", "error", err)
	}

	addr := config.Server.Addr
	if port := os.Getenv(unchainedenv.EnvPort); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      app.Handler(),
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "app", config.AppName, "addr", addr, "routes", len(app.Routes()))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}

	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}
}

// loadConfigFromFile attempts to load configuration from a TOML file if it
// exists; missing files fall back to env vars and defaults
func loadConfigFromFile() models.Config {
	configPath := getEnv(unchainedenv.EnvConfigPath, "config.toml")

	if _, err := os.Stat(configPath); err != nil {
		return models.Config{}
	}

	config, err := unchainedconfig.LoadFile(configPath)
	if err != nil {
		log.Printf("Failed to parse config file %s, using environment and defaults: %v", configPath, err)
		return models.Config{}
	}

	return config
}

func registerDemoViews(registry models.Registry, logger models.Logger) {
	mustRegisterView(logger, registry, "status", models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {
		util.JSONResponse(w, http.StatusOK, map[string]any{"status": "ok"})
	}))

	mustRegisterView(logger, registry, "whoami", models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _ := models.ClientIPFromContext(r.Context())
		id, _ := models.RequestIDFromContext(r.Context())
		util.JSONResponse(w, http.StatusOK, map[string]any{
			"client_ip":  ip,
			"request_id": id,
		})
	}))
}

func mustRegisterView(logger models.Logger, registry models.Registry, name string, view models.View) {
	if err := registry.RegisterView(name, view); err != nil {
		logger.Error("Failed to register view", "name", name, "error", err)
		os.Exit(1)
	}
}

// demoTable declares routes in code, including a template-rendered home
// page when a template directory is present
func demoTable(app *unchained.App) *models.URLTable {
	table := models.NewURLTable()

	statusView, _ := app.Registry().View("status")
	table.Route("/status", models.Wrap(statusView))

	whoamiView, _ := app.Registry().View("whoami")
	table.Route("/whoami", models.Methods(models.Get(whoamiView)))

	table.Route("/hello/{name}", models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {
		app.Renderer().Text(w, http.StatusOK, "hello, world")
	}))

	return table
}
