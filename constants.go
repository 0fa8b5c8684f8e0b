package main

// Screen text
const (
	PageTitle          = "One-Arm Bandit"
	NoticeNotEnough    = "Not enough credits to spin."
	NoticeDismissLabel = "Dismiss"
)

// Session configuration constants
const (
	SessionCookieName = "session_id"
)

// Route constants
const (
	RouteHome         = "/"
	RouteSpin         = "/spin"
	RouteDismiss      = "/dismiss"
	RouteMachineState = "/machine-state"
	RouteAPIState     = "/api/state"
	RouteNewGame      = "/new-game"
	RouteHealthz      = "/healthz"
	RouteMetrics      = "/metrics"
)

// Template names
const (
	TemplatePage    = "index.html"
	TemplateMachine = "machine-content"
)

// Error message constants
const (
	ErrorMachineUnavailable = "The machine is not available right now."
	ErrorTooManyRequests    = "Too many requests. Please slow down."
)

// SpinPollInterval is how often a spinning screen asks for a fresh render.
const SpinPollInterval = "500ms"

type contextKey string

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
