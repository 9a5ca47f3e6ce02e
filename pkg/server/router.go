package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kyleterry/vhttp/pkg/files/store"
)

const (
	// FileRoutePrefix is the prefix of the single file route. Everything after
	// it is the file name.
	FileRoutePrefix = "/file/"
)

// route binds a path to the handler that answers it. Prefix routes pass the
// remainder of the path to the handler as the key.
type route struct {
	pattern string
	prefix  bool
	handler func(rt *Router, key string) http.Handler
}

// Router answers the virtual routes from a store. The route table is fixed
// when the router is created.
type Router struct {
	store  *store.Store
	logger zerolog.Logger
	routes []route

	// now is swapped out in tests
	now func() time.Time
}

func NewRouter(s *store.Store, logger zerolog.Logger) *Router {
	rt := &Router{
		store:  s,
		logger: logger,
		now:    time.Now,
	}

	rt.routes = []route{
		{pattern: "/", handler: (*Router).listing},
		{pattern: "/files", handler: (*Router).listing},
		{pattern: FileRoutePrefix, prefix: true, handler: (*Router).file},
		{pattern: "/folders", handler: (*Router).folders},
		{pattern: "/info", handler: (*Router).info},
	}

	return rt
}

// Match returns the handler for r, or false if r is not one of the virtual
// routes and should continue to wherever it was going. The path is compared
// after percent-decoding, case-sensitively and regardless of method.
func (rt *Router) Match(r *http.Request) (http.Handler, bool) {
	p := r.URL.Path

	for _, route := range rt.routes {
		if route.prefix {
			if strings.HasPrefix(p, route.pattern) {
				return route.handler(rt, p[len(route.pattern):]), true
			}

			continue
		}

		if p == route.pattern {
			return route.handler(rt, ""), true
		}
	}

	return nil, false
}

// Middleware answers matching requests and passes everything else to next.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := rt.Match(r); ok {
			rt.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("intercepted")
			h.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// ServeHTTP serves the virtual routes and a plain 404 for anything else.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.Middleware(http.NotFoundHandler()).ServeHTTP(w, r)
}

func (rt *Router) listing(string) http.Handler {
	return ListingHandler{store: rt.store, now: rt.now, logger: rt.logger}
}

func (rt *Router) file(key string) http.Handler {
	return FileHandler{key: key, store: rt.store, logger: rt.logger}
}

func (rt *Router) folders(string) http.Handler {
	return FoldersHandler{store: rt.store, now: rt.now, logger: rt.logger}
}

func (rt *Router) info(string) http.Handler {
	return InfoHandler{store: rt.store, now: rt.now, logger: rt.logger}
}
