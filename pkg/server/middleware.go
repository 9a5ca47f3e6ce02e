package server

import "net/http"

type middlewareFunc func(http.Handler) http.Handler

// Middleware is a type that allows the wrapping of an http.Handler in middleware
// functions that will execute each other.
// See: https://en.wikipedia.org/wiki/Middleware
type Middleware struct {
	handlers []middlewareFunc
}

// Wrap takes a final http.Handler and wraps it with all the configured middleware
// handlers in the chain. The first handler in the chain sees the request first.
func (m Middleware) Wrap(h http.Handler) http.Handler {
	for i := range m.handlers {
		h = m.handlers[len(m.handlers)-1-i](h)
	}

	return h
}

// WithHandlers appends new middleware handlers to the current chain and
// returns a new Middleware
func (m Middleware) WithHandlers(handlers ...middlewareFunc) Middleware {
	nmc := append([]middlewareFunc{}, m.handlers...)
	nmc = append(nmc, handlers...)

	return Middleware{nmc}
}

// NewMiddleware returns a new Middleware
func NewMiddleware(handlers ...middlewareFunc) Middleware {
	return Middleware{handlers}
}

// controlEndpoint routes requests for path to the control handler before
// anything else in the chain sees them.
func controlEndpoint(path string, control http.Handler) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if path != "" && r.URL.Path == path {
				control.ServeHTTP(w, r)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
