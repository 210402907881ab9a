package unchained

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/robgibbons/express-unchained/events"
	"github.com/robgibbons/express-unchained/models"
)

// TestLifecycleEventsPublished verifies route.registered fires per
// installed registration and app.ready fires on Ready
func TestLifecycleEventsPublished(t *testing.T) {
	bus := events.NewEventBus(models.EventBusConfig{
		Prefix:                "unchained",
		BufferSize:            16,
		MaxConcurrentHandlers: 4,
	}, nil)
	defer bus.Close()

	registered := make(chan events.RouteRegisteredPayload, 8)
	_, err := bus.Subscribe(events.EventRouteRegistered, func(ctx context.Context, event models.Event) error {
		var p events.RouteRegisteredPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return err
		}
		registered <- p
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	ready := make(chan events.AppReadyPayload, 1)
	_, err = bus.Subscribe(events.EventAppReady, func(ctx context.Context, event models.Event) error {
		var p events.AppReadyPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return err
		}
		ready <- p
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	config := testConfig()
	config.DefaultMethod = http.MethodGet
	app := New(config, &mockLogger{}, &AppOptions{EventBus: bus})

	table := models.NewURLTable().
		Route("/a", textHandler("a")).
		Route("/b", textHandler("b"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}
	if err := app.Ready(context.Background()); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}

	patterns := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-registered:
			patterns[p.Pattern] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for route.registered")
		}
	}
	if !patterns["/a"] || !patterns["/b"] {
		t.Errorf("unexpected registered patterns: %v", patterns)
	}

	select {
	case p := <-ready:
		if p.Routes != 2 {
			t.Errorf("app.ready routes: got %d, want 2", p.Routes)
		}
		if p.AppName != "test" {
			t.Errorf("app.ready app name: got %q", p.AppName)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for app.ready")
	}
}

// TestAppWithoutBusPublishesNothing verifies the bus is optional
func TestAppWithoutBusPublishesNothing(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	table := models.NewURLTable().Route("/a", textHandler("a"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}
	if err := app.Ready(context.Background()); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
}

// TestRateLimitFromConfig verifies the configured limiter is mounted
// globally
func TestRateLimitFromConfig(t *testing.T) {
	config := testConfig()
	config.DefaultMethod = http.MethodGet
	config.RateLimit = models.RateLimitConfig{
		Enabled:      true,
		RequestLimit: 2,
		WindowLength: time.Minute,
	}
	app := New(config, &mockLogger{}, nil)

	table := models.NewURLTable().Route("/a", textHandler("a"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	var last int
	for i := 0; i < 3; i++ {
		last = do(app, http.MethodGet, "/a").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request: got status %d, want 429", last)
	}
}
