// Package compose flattens declarative Views into the (method, pattern,
// chain) registrations consumed by the host router. Composition happens
// once at startup; any malformed View aborts with a configuration error
// before a single route is installed.
package compose

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/robgibbons/express-unchained/models"
)

// maxDepth bounds WrappedView nesting. Real tables nest two or three
// levels; the guard exists so a pathological spec cannot exhaust the stack.
const maxDepth = 32

// SupportedMethods is the set a bare HandlerView expands to when the
// default method is "all", in registration order.
var SupportedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
}

// Error is a configuration error detected while composing a route table.
// It always identifies the offending URL pattern.
type Error struct {
	Pattern string
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("compose %q: %s", e.Pattern, e.Reason)
}

func errf(pattern, format string, args ...any) *Error {
	return &Error{Pattern: pattern, Reason: fmt.Sprintf(format, args...)}
}

// ResolveTable composes every entry of a table in declaration order.
// defaultMethod is models.MethodAll or a single verb (see Config).
// The first malformed entry aborts the whole table: the returned slice is
// nil and no partial output is produced.
func ResolveTable(table *models.URLTable, defaultMethod string) ([]models.Registration, error) {
	var out []models.Registration
	seen := make(map[string]struct{})

	for _, entry := range table.Entries() {
		regs, err := ResolveEntry(entry, defaultMethod)
		if err != nil {
			return nil, err
		}
		for _, reg := range regs {
			key := reg.Method + " " + reg.Pattern
			if _, dup := seen[key]; dup {
				return nil, errf(reg.Pattern, "method %s registered twice", reg.Method)
			}
			seen[key] = struct{}{}
		}
		out = append(out, regs...)
	}

	return out, nil
}

// ResolveEntry composes a single pattern/View declaration into its
// registrations, one per applicable HTTP method.
func ResolveEntry(entry models.RouteEntry, defaultMethod string) ([]models.Registration, error) {
	if entry.Pattern == "" {
		return nil, errf(entry.Pattern, "route has an empty pattern")
	}
	return resolve(entry.Pattern, entry.View, nil, defaultMethod, 0)
}

// resolve walks the View shape carrying the middleware inherited from
// enclosing WrappedViews. Outer middleware stays ahead of inner middleware
// in every produced chain.
func resolve(pattern string, view models.View, inherited []models.Middleware, defaultMethod string, depth int) ([]models.Registration, error) {
	if depth > maxDepth {
		return nil, errf(pattern, "middleware nesting exceeds %d levels", maxDepth)
	}

	switch v := view.(type) {
	case nil:
		return nil, errf(pattern, "route has no view")

	case models.WrappedView:
		for i, mw := range v.Middleware {
			if mw == nil {
				return nil, errf(pattern, "middleware %d is nil", i)
			}
		}
		if v.Inner == nil {
			return nil, errf(pattern, "middleware chain has no terminal view")
		}
		return resolve(pattern, v.Inner, concat(inherited, v.Middleware), defaultMethod, depth+1)

	case models.HandlerView:
		if v.Handler == nil {
			return nil, errf(pattern, "handler view has a nil handler")
		}
		regs := make([]models.Registration, 0, len(SupportedMethods))
		for _, method := range expandDefault(defaultMethod) {
			regs = append(regs, models.Registration{
				Method:     method,
				Pattern:    pattern,
				Middleware: concat(inherited, nil),
				Handler:    v.Handler,
			})
		}
		return regs, nil

	case models.MethodView:
		if len(v.Entries) == 0 {
			return nil, errf(pattern, "method view declares no methods")
		}
		regs := make([]models.Registration, 0, len(v.Entries))
		declared := make(map[string]struct{}, len(v.Entries))
		for _, entry := range v.Entries {
			method := strings.ToUpper(entry.Method)
			if !isSupported(method) {
				return nil, errf(pattern, "unknown HTTP method %q", entry.Method)
			}
			if _, dup := declared[method]; dup {
				return nil, errf(pattern, "method %s declared twice", method)
			}
			declared[method] = struct{}{}

			// Method middleware must not leak to sibling methods, so each
			// leaf starts from the same inherited chain.
			reg, err := resolveLeaf(pattern, method, entry.View, inherited, depth+1)
			if err != nil {
				return nil, err
			}
			regs = append(regs, reg)
		}
		return regs, nil

	default:
		return nil, errf(pattern, "unrecognized view shape %T", view)
	}
}

// resolveLeaf composes the value bound to one method. Only HandlerViews and
// WrappedViews terminating in a HandlerView are valid here; a nested
// MethodView has no meaning inside another MethodView.
func resolveLeaf(pattern, method string, view models.View, inherited []models.Middleware, depth int) (models.Registration, error) {
	if depth > maxDepth {
		return models.Registration{}, errf(pattern, "middleware nesting exceeds %d levels", maxDepth)
	}

	switch v := view.(type) {
	case nil:
		return models.Registration{}, errf(pattern, "method %s has no view", method)

	case models.WrappedView:
		for i, mw := range v.Middleware {
			if mw == nil {
				return models.Registration{}, errf(pattern, "method %s: middleware %d is nil", method, i)
			}
		}
		if v.Inner == nil {
			return models.Registration{}, errf(pattern, "method %s: middleware chain has no terminal view", method)
		}
		return resolveLeaf(pattern, method, v.Inner, concat(inherited, v.Middleware), depth+1)

	case models.HandlerView:
		if v.Handler == nil {
			return models.Registration{}, errf(pattern, "method %s has a nil handler", method)
		}
		return models.Registration{
			Method:     method,
			Pattern:    pattern,
			Middleware: concat(inherited, nil),
			Handler:    v.Handler,
		}, nil

	case models.MethodView:
		return models.Registration{}, errf(pattern, "method %s: method views cannot nest", method)

	default:
		return models.Registration{}, errf(pattern, "method %s: unrecognized view shape %T", method, view)
	}
}

func expandDefault(defaultMethod string) []string {
	if defaultMethod == "" || strings.EqualFold(defaultMethod, models.MethodAll) {
		return SupportedMethods
	}
	return []string{strings.ToUpper(defaultMethod)}
}

func isSupported(method string) bool {
	for _, m := range SupportedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// concat returns a fresh slice so registrations never alias each other's
// middleware backing arrays.
func concat(a, b []models.Middleware) []models.Middleware {
	out := make([]models.Middleware, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
