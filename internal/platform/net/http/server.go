package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"magnetinfo/internal/platform/config"
	perr "magnetinfo/internal/platform/errors"
	"magnetinfo/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the root chi mux and the listener lifecycle
type Server struct {
	addr  string
	grace time.Duration
	mux   *chi.Mux
}

// NewServer reads ADDR (":4000") and SHUTDOWN_GRACE (10s) from cfg
// unmatched routes and verbs answer with the JSON envelope
func NewServer(cfg config.Conf) *Server {
	m := chi.NewRouter()
	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, perr.NotFoundf("route %s not found", r.URL.Path))
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, perr.Newf(perr.ErrorCodeMethodNotAllowed, "method %s not allowed on %s", r.Method, r.URL.Path))
	})
	return &Server{
		addr:  cfg.MayString("ADDR", ":4000"),
		grace: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		mux:   m,
	}
}

// Router is where the API mounts its routes
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// ServeHTTP lets tests drive the mux without a listener
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// Run listens on the configured address and serves until ctx ends
// in-flight resolutions get the grace period to settle before connections are cut
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("grace", s.grace).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
