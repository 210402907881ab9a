package models

import (
	"context"
)

type ContextKey string

const (
	ContextRouteInfo ContextKey = "unchained.route_info"
	ContextRequestID ContextKey = "unchained.request_id"
	ContextClientIP  ContextKey = "unchained.client_ip"
)

func (k ContextKey) String() string {
	return string(k)
}

// RouteInfo describes the registration a request resolved to. It is
// injected into the request context before any route middleware runs.
type RouteInfo struct {
	Method  string
	Pattern string
}

// NewContextWithRouteInfo stores route info in a context.
func NewContextWithRouteInfo(ctx context.Context, info RouteInfo) context.Context {
	return context.WithValue(ctx, ContextRouteInfo, info)
}

// RouteInfoFromContext retrieves route info stored by the router.
func RouteInfoFromContext(ctx context.Context) (RouteInfo, bool) {
	info, ok := ctx.Value(ContextRouteInfo).(RouteInfo)
	return info, ok
}

// RequestIDFromContext retrieves the request ID set by the requestid
// middleware.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextRequestID).(string)
	return id, ok
}

// ClientIPFromContext retrieves the client IP set by the realip middleware.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ContextClientIP).(string)
	return ip, ok
}
