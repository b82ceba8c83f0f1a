// Package server holds the HTTP server's partial configuration.
//
// The Fiber app itself is assembled in the start command; this package owns
// the settings it needs: listen port and the API key protecting the surface.
package server
