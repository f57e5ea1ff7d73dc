package http

import "net/http"

// Handler is the platform handler type
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the surface services mount their routes on
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)

	Use(mw ...func(http.Handler) http.Handler)
	Route(pattern string, fn func(Router))
	Group(fn func(Router))

	Mux() http.Handler
}
