package http

import "net/http"

// Handler is a plain handler func; modules register these rather than http.Handler values
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules mount against; AdaptChi provides the production one
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	// Handle routes every method on path to h
	Handle(path string, h http.Handler)

	Use(mw ...func(http.Handler) http.Handler)
	// Group shares the path with a fresh middleware stack
	Group(fn func(Router))
	// Route opens a subrouter under pattern
	Route(pattern string, fn func(Router))

	// Mux is the root handler to serve
	Mux() http.Handler
}
