package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. Patterns are
// relative to the owning Group's prefix.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
