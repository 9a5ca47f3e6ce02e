package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/kyleterry/vhttp/pkg/config"
	"github.com/kyleterry/vhttp/pkg/control"
	"github.com/kyleterry/vhttp/pkg/files/store"
	"github.com/kyleterry/vhttp/pkg/version"
)

// maxControlBody bounds snapshots posted over plain HTTP.
const maxControlBody = 64 << 20

// Server hosts the virtual routes on a real listener. Requests for the routes
// are intercepted by the router; the control path accepts snapshot updates;
// everything else falls through to a usage page.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	router  *Router
	channel *control.Channel
	logger  zerolog.Logger
}

// New returns a new Server answering from store, with updates applied through
// channel.
func New(cfg *config.Config, s *store.Store, channel *control.Channel, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   s,
		router:  NewRouter(s, logger),
		channel: channel,
		logger:  logger,
	}
}

// Router returns the router the server intercepts requests with.
func (s *Server) Router() *Router {
	return s.router
}

// Handler builds the full handler chain: panic recovery, access logging, the
// control endpoint, interception, and the usage page.
func (s *Server) Handler() http.Handler {
	base := NewMiddleware(
		handlers.RecoveryHandler(
			handlers.RecoveryLogger(recoveryLogger{s.logger}),
			handlers.PrintRecoveryStack(true),
		),
		accessLog(s.logger),
	)

	chain := base.WithHandlers(
		controlEndpoint(s.cfg.ControlPath, ControlHandler{
			channel:        s.channel,
			logger:         s.logger,
			originPatterns: s.cfg.ControlOrigins,
			maxBody:        maxControlBody,
		}),
		s.router.Middleware,
	)

	return chain.Wrap(http.HandlerFunc(s.usage))
}

// Run starts an http listener on the configured bind address and returns a cancel
// function and an error channel.
func (s *Server) Run(ctx context.Context) (context.CancelFunc, chan error) {
	ctx, cancel := context.WithCancel(ctx)
	errch := make(chan error, 1)

	hsrv := &http.Server{Addr: s.cfg.BindAddr, Handler: s.Handler()}
	go func() {
		go s.run(hsrv, errch)

		<-ctx.Done()

		s.logger.Info().Msg("shutting down")
		hsrv.Shutdown(context.Background())
	}()

	scheme := "http"
	if hsrv.TLSConfig != nil {
		scheme = "https"
	}
	s.logger.Info().Msgf("listening on: %s://%s", scheme, hsrv.Addr)

	return cancel, errch
}

func (s *Server) run(srv *http.Server, errch chan<- error) {
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		err = nil
	}
	errch <- err
	close(errch)
}

// usage handles every request that is neither a virtual route nor the control
// endpoint.
func (s *Server) usage(w http.ResponseWriter, r *http.Request) {
	ctx := UsageTemplateContext{
		Version:     version.Version,
		Commit:      version.Commit,
		Host:        extractHost(s.cfg, r),
		Path:        r.URL.Path,
		ControlPath: s.cfg.ControlPath,
		FileCount:   s.store.Size(),
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)

	if err := render(w, usage, ctx); err != nil {
		s.logger.Error().Err(err).Msg("err while rendering template")
	}
}

// ControlHandler accepts snapshot updates. Websocket upgrades are handed to
// control.WebSocketHandler; a POST carries a single control message.
//
// Browsers can only reach it from the server's own origin: the websocket
// checks Origin against Host, and a POST must be application/json, which no
// cross-origin page can send without a preflight this server never answers.
type ControlHandler struct {
	channel        *control.Channel
	logger         zerolog.Logger
	originPatterns []string
	maxBody        int64
}

func (h ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		wsh := control.NewWebSocketHandler(h.channel, h.logger)
		wsh.OriginPatterns = h.originPatterns
		wsh.ServeHTTP(w, r)

		return
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

		return
	}

	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		http.Error(w, "content type must be application/json", http.StatusUnsupportedMediaType)

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)

			return
		}

		h.logger.Debug().Err(err).Msg("failed to read control message")
		http.Error(w, "failed to read request body", http.StatusBadRequest)

		return
	}

	if err := h.channel.HandleMessage(body); err != nil {
		WriteError(h.logger, err, w)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func accessLog(logger zerolog.Logger) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return handlers.LoggingHandler(accessLogWriter{logger}, next)
	}
}

// accessLogWriter logs each common log line from gorilla/handlers at info
// level so access logs follow the configured level.
type accessLogWriter struct {
	logger zerolog.Logger
}

func (w accessLogWriter) Write(p []byte) (int, error) {
	w.logger.Info().Msg(strings.TrimSpace(string(p)))

	return len(p), nil
}

// recoveryLogger adapts zerolog to the logger gorilla/handlers reports panics to.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

// extractHost checks to see if a Host is set in config and returns that, otherwise
// it returns the host generated by net/http.Request.
func extractHost(cfg *config.Config, r *http.Request) string {
	if cfg.Host != "" {
		return cfg.Host
	}

	return fmt.Sprintf("http://%s", r.Host)
}
