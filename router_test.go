package unchained

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robgibbons/express-unchained/models"
)

type mockLogger struct {
	warnings []string
	errors   []string
}

func (l *mockLogger) Debug(msg string, args ...any) {}
func (l *mockLogger) Info(msg string, args ...any)  {}
func (l *mockLogger) Warn(msg string, args ...any)  { l.warnings = append(l.warnings, msg) }
func (l *mockLogger) Error(msg string, args ...any) { l.errors = append(l.errors, msg) }

func testConfig() *models.Config {
	return &models.Config{
		AppName:       "test",
		DefaultMethod: models.MethodAll,
	}
}

func textHandler(body string) models.View {
	return models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})
}

func do(app *App, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// TestBareHandlerServesAllMethods verifies that a bare handler view
// answers on every supported method when the default method is "all"
func TestBareHandlerServesAllMethods(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	table := models.NewURLTable().Route("/ping", textHandler("pong"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := do(app, method, "/ping")
		if rec.Code != http.StatusOK {
			t.Errorf("%s /ping: got status %d, want 200", method, rec.Code)
		}
	}
}

// TestDefaultMethodNarrowing verifies that a single-verb default method
// narrows bare handlers to that verb
func TestDefaultMethodNarrowing(t *testing.T) {
	config := testConfig()
	config.DefaultMethod = http.MethodGet
	app := New(config, &mockLogger{}, nil)

	table := models.NewURLTable().Route("/ping", textHandler("pong"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	if rec := do(app, http.MethodGet, "/ping"); rec.Code != http.StatusOK {
		t.Errorf("GET /ping: got status %d, want 200", rec.Code)
	}
	if rec := do(app, http.MethodPost, "/ping"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ping: got status %d, want 405", rec.Code)
	}
}

// TestMethodViewDispatch verifies per-method dispatch and 405 for
// undeclared methods
func TestMethodViewDispatch(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	table := models.NewURLTable().Route("/items", models.Methods(
		models.Get(textHandler("list")),
		models.Post(textHandler("create")),
	))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	if rec := do(app, http.MethodGet, "/items"); rec.Body.String() != "list" {
		t.Errorf("GET /items: got body %q, want %q", rec.Body.String(), "list")
	}
	if rec := do(app, http.MethodPost, "/items"); rec.Body.String() != "create" {
		t.Errorf("POST /items: got body %q, want %q", rec.Body.String(), "create")
	}
	if rec := do(app, http.MethodDelete, "/items"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /items: got status %d, want 405", rec.Code)
	}
}

// TestMiddlewareExecutionOrder verifies outer-declared middleware runs
// before inner-declared middleware for nested wrapping
func TestMiddlewareExecutionOrder(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	tag := func(name string) models.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Chain", name)
				next.ServeHTTP(w, r)
			})
		}
	}

	table := models.NewURLTable().Route("/items", models.Wrap(
		models.Methods(
			models.Get(textHandler("list")),
			models.Post(models.Wrap(textHandler("create"), tag("B"))),
		),
		tag("A"),
	))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	get := do(app, http.MethodGet, "/items")
	if got := get.Header().Values("X-Chain"); len(got) != 1 || got[0] != "A" {
		t.Errorf("GET chain: got %v, want [A]", got)
	}

	post := do(app, http.MethodPost, "/items")
	if got := post.Header().Values("X-Chain"); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("POST chain: got %v, want [A B]", got)
	}
}

// TestNotFoundReturnsJSON verifies the default NotFound handler
func TestNotFoundReturnsJSON(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	rec := do(app, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("NotFound body is not JSON: %v", err)
	}
	if body["message"] != "Not Found" {
		t.Errorf("got message %v, want Not Found", body["message"])
	}
}

// TestBasePathPrefix verifies all routes are installed under the
// configured base path
func TestBasePathPrefix(t *testing.T) {
	config := testConfig()
	config.BasePath = "/app"
	app := New(config, &mockLogger{}, nil)

	table := models.NewURLTable().Route("/ping", textHandler("pong"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	if rec := do(app, http.MethodGet, "/app/ping"); rec.Code != http.StatusOK {
		t.Errorf("GET /app/ping: got status %d, want 200", rec.Code)
	}
	if rec := do(app, http.MethodGet, "/ping"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /ping: got status %d, want 404", rec.Code)
	}
}

// TestRouteInfoInContext verifies middleware and handlers can read the
// matched pattern from the request context
func TestRouteInfoInContext(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	var fromMiddleware, fromHandler models.RouteInfo
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromMiddleware, _ = models.RouteInfoFromContext(r.Context())
			next.ServeHTTP(w, r)
		})
	}

	table := models.NewURLTable().Route("/articles/{slug}", models.Wrap(
		models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {
			fromHandler, _ = models.RouteInfoFromContext(r.Context())
		}),
		capture,
	))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	do(app, http.MethodGet, "/articles/hello")

	if fromMiddleware.Pattern != "/articles/{slug}" {
		t.Errorf("middleware saw pattern %q", fromMiddleware.Pattern)
	}
	if fromHandler.Pattern != "/articles/{slug}" {
		t.Errorf("handler saw pattern %q", fromHandler.Pattern)
	}
}

// TestCatchAllPriority documents chi's tie-break rule: static patterns win
// over the catch-all regardless of declaration order
func TestCatchAllPriority(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	table := models.NewURLTable().
		Route("/*", textHandler("fallback")).
		Route("/exact", textHandler("exact"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	if rec := do(app, http.MethodGet, "/exact"); rec.Body.String() != "exact" {
		t.Errorf("GET /exact: got body %q, want %q", rec.Body.String(), "exact")
	}
	if rec := do(app, http.MethodGet, "/anything/else"); rec.Body.String() != "fallback" {
		t.Errorf("GET /anything/else: got body %q, want %q", rec.Body.String(), "fallback")
	}
}

// TestMalformedTableInstallsNothing verifies fail-fast: a composition
// error leaves the router without any route from the failing table
func TestMalformedTableInstallsNothing(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	table := models.NewURLTable().
		Route("/ok", textHandler("ok")).
		Route("/bad", models.WrappedView{Middleware: []models.Middleware{
			func(next http.Handler) http.Handler { return next },
		}})

	if err := app.RegisterTable(table); err == nil {
		t.Fatal("expected composition error")
	}

	if rec := do(app, http.MethodGet, "/ok"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /ok after failed registration: got status %d, want 404", rec.Code)
	}
	if len(app.Routes()) != 0 {
		t.Errorf("routes installed after failed registration: %d", len(app.Routes()))
	}
}

// TestDuplicateAcrossTablesRejected verifies cross-table ambiguity is fatal
func TestDuplicateAcrossTablesRejected(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	first := models.NewURLTable().Route("/x", models.Methods(models.Get(textHandler("a"))))
	if err := app.RegisterTable(first); err != nil {
		t.Fatalf("first RegisterTable failed: %v", err)
	}

	second := models.NewURLTable().Route("/x", models.Methods(models.Get(textHandler("b"))))
	if err := app.RegisterTable(second); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

// TestRoutesPreservesDeclarationOrder verifies introspection order
func TestRoutesPreservesDeclarationOrder(t *testing.T) {
	app := New(testConfig(), &mockLogger{}, nil)

	config := testConfig()
	config.DefaultMethod = http.MethodGet
	app = New(config, &mockLogger{}, nil)

	table := models.NewURLTable().
		Route("/a/", textHandler("a")).
		Route("/b/", textHandler("b")).
		Route("/*", textHandler("c"))
	if err := app.RegisterTable(table); err != nil {
		t.Fatalf("RegisterTable failed: %v", err)
	}

	routes := app.Routes()
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}
	for i, want := range []string{"/a/", "/b/", "/*"} {
		if routes[i].Pattern != want {
			t.Errorf("route %d: got pattern %q, want %q", i, routes[i].Pattern, want)
		}
	}
}

// TestTrustedHeaderWarning verifies the startup misconfiguration warning
func TestTrustedHeaderWarning(t *testing.T) {
	logger := &mockLogger{}
	config := testConfig()
	config.Security.TrustedHeaders = []string{"X-Forwarded-For"}

	New(config, logger, nil)

	if len(logger.warnings) == 0 {
		t.Error("expected a security warning about trusted headers without proxies")
	}
}
