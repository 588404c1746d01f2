package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// API routes served by this process
	RouteLogin    = "/api/auth/login"
	RouteCallback = "/api/auth/callback"
	RouteAccount  = "/api/account"

	// Browser destinations owned by the frontend, reached via redirect
	// after the callback terminates. The error page reads the `error`
	// query parameter and maps it to display copy.
	RouteCallbackSuccess = "/callback"
	RouteErrorPage       = "/error"
)
