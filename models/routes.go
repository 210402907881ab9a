package models

import (
	"net/http"
)

// RouteEntry is one declaration in a URLTable: a URL pattern bound to a
// View. Patterns use chi syntax ({param}, {param:regex}, * catch-all).
type RouteEntry struct {
	Pattern string
	View    View
}

// URLTable is the ordered, declarative route table. Declaration order is
// preserved all the way down to registration with the host router; pattern
// priority between overlapping routes is chi's own trie rule, never
// reordered here.
type URLTable struct {
	entries []RouteEntry
}

// NewURLTable creates an empty route table.
func NewURLTable() *URLTable {
	return &URLTable{}
}

// Route appends a pattern/View declaration and returns the table for
// chaining.
func (t *URLTable) Route(pattern string, view View) *URLTable {
	t.entries = append(t.entries, RouteEntry{Pattern: pattern, View: view})
	return t
}

// Entries returns the declarations in declaration order.
func (t *URLTable) Entries() []RouteEntry {
	return t.entries
}

// Len returns the number of declarations.
func (t *URLTable) Len() int {
	return len(t.entries)
}

// Registration is the flattened output of composing one method of one
// RouteEntry: everything the host router needs to install the route.
// Middleware runs in slice order before Handler.
type Registration struct {
	Method     string
	Pattern    string
	Middleware []Middleware
	Handler    http.Handler
}

// Chain builds the final http.Handler for the registration by wrapping
// Handler in Middleware, first element outermost.
func (r Registration) Chain() http.Handler {
	h := r.Handler
	for i := len(r.Middleware) - 1; i >= 0; i-- {
		h = r.Middleware[i](h)
	}
	return h
}
