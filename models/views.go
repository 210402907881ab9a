package models

import (
	"net/http"
)

// Middleware wraps an http.Handler with pre/post request behavior.
// It matches the standard net/http middleware signature used by chi.
type Middleware func(http.Handler) http.Handler

// View describes how requests for one URL pattern are handled. It is a
// closed set of three shapes, discriminated by construction:
//
//   - HandlerView: a single handler serving every applicable method
//   - MethodView: per-HTTP-method handling
//   - WrappedView: middleware applied around an inner View
//
// Views are built once at startup and are immutable afterwards.
type View interface {
	view()
}

// HandlerView is a View backed by a single handler. Which methods it is
// registered for depends on the configured default method (see
// Config.DefaultMethod).
type HandlerView struct {
	Handler http.Handler
}

func (HandlerView) view() {}

// MethodEntry binds one HTTP method to a View. The bound View may be a
// HandlerView or a WrappedView; nesting another MethodView is rejected
// during composition.
type MethodEntry struct {
	Method string
	View   View
}

// MethodView dispatches per HTTP method. Entries keep declaration order so
// composition output is deterministic. Methods not listed are not
// registered for the pattern.
type MethodView struct {
	Entries []MethodEntry
}

func (MethodView) view() {}

// WrappedView applies middleware, in order, around an inner View. The
// inner View may itself be wrapped again; outer middleware always runs
// before inner middleware.
type WrappedView struct {
	Middleware []Middleware
	Inner      View
}

func (WrappedView) view() {}

// Handle builds a View from a plain http.Handler.
func Handle(h http.Handler) View {
	return HandlerView{Handler: h}
}

// HandleFunc builds a View from a handler function.
func HandleFunc(f func(http.ResponseWriter, *http.Request)) View {
	if f == nil {
		return HandlerView{}
	}
	return HandlerView{Handler: http.HandlerFunc(f)}
}

// Wrap applies middleware around an inner View. Outer-most call wins the
// first slot in the chain: Wrap(inner, A, B) executes A, then B, then inner.
func Wrap(inner View, middleware ...Middleware) View {
	return WrappedView{Middleware: middleware, Inner: inner}
}

// Methods builds a per-method View from ordered entries.
func Methods(entries ...MethodEntry) View {
	return MethodView{Entries: entries}
}

// Get binds a View to the GET method.
func Get(v View) MethodEntry { return MethodEntry{Method: http.MethodGet, View: v} }

// Post binds a View to the POST method.
func Post(v View) MethodEntry { return MethodEntry{Method: http.MethodPost, View: v} }

// Put binds a View to the PUT method.
func Put(v View) MethodEntry { return MethodEntry{Method: http.MethodPut, View: v} }

// Patch binds a View to the PATCH method.
func Patch(v View) MethodEntry { return MethodEntry{Method: http.MethodPatch, View: v} }

// Delete binds a View to the DELETE method.
func Delete(v View) MethodEntry { return MethodEntry{Method: http.MethodDelete, View: v} }

// Head binds a View to the HEAD method.
func Head(v View) MethodEntry { return MethodEntry{Method: http.MethodHead, View: v} }

// Options binds a View to the OPTIONS method.
func Options(v View) MethodEntry { return MethodEntry{Method: http.MethodOptions, View: v} }

// Method binds a View to an arbitrary method name. The name is validated
// during composition.
func Method(name string, v View) MethodEntry {
	return MethodEntry{Method: name, View: v}
}
