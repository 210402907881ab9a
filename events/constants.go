package events

// Lifecycle event types published by the library itself. Applications can
// subscribe to them and publish their own types alongside.
const (
	// EventRouteRegistered fires once per installed registration. Payload:
	// RouteRegisteredPayload.
	EventRouteRegistered = "route.registered"

	// EventAppReady fires after the route table has been composed and
	// installed. Payload: AppReadyPayload.
	EventAppReady = "app.ready"
)

// RouteRegisteredPayload is the payload of EventRouteRegistered.
type RouteRegisteredPayload struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// AppReadyPayload is the payload of EventAppReady.
type AppReadyPayload struct {
	AppName string `json:"app_name"`
	Routes  int    `json:"routes"`
}
