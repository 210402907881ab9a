package registry

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robgibbons/express-unchained/models"
)

func TestRegisterAndLookupView(t *testing.T) {
	reg := New()
	view := models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, reg.RegisterView("articles.list", view))

	got, ok := reg.View("articles.list")
	assert.True(t, ok)
	assert.NotNil(t, got)

	_, ok = reg.View("articles.missing")
	assert.False(t, ok)
}

func TestDuplicateViewNameRejected(t *testing.T) {
	reg := New()
	view := models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, reg.RegisterView("home", view))
	err := reg.RegisterView("home", view)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterAndLookupMiddleware(t *testing.T) {
	reg := New()
	mw := func(next http.Handler) http.Handler { return next }

	require.NoError(t, reg.RegisterMiddleware("auth.required", mw))

	got, ok := reg.Middleware("auth.required")
	assert.True(t, ok)
	assert.NotNil(t, got)

	err := reg.RegisterMiddleware("auth.required", mw)
	require.Error(t, err)
}

func TestEmptyAndNilRegistrationsRejected(t *testing.T) {
	reg := New()

	assert.Error(t, reg.RegisterView("", models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {})))
	assert.Error(t, reg.RegisterView("x", nil))
	assert.Error(t, reg.RegisterMiddleware("", func(next http.Handler) http.Handler { return next }))
	assert.Error(t, reg.RegisterMiddleware("x", nil))
}

func TestNamesPreserveRegistrationOrder(t *testing.T) {
	reg := New()
	view := models.HandleFunc(func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, reg.RegisterView("b", view))
	require.NoError(t, reg.RegisterView("a", view))
	require.NoError(t, reg.RegisterView("c", view))

	assert.Equal(t, []string{"b", "a", "c"}, reg.ViewNames())
}
