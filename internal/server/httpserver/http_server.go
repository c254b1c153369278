// Package httpserver serves the rendered reference page together with health,
// metrics and live reload endpoints.
package httpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"git.home.luguber.info/inful/apiref/internal/config"
	derrors "git.home.luguber.info/inful/apiref/internal/foundation/errors"
	"git.home.luguber.info/inful/apiref/internal/logfields"
	smw "git.home.luguber.info/inful/apiref/internal/server/middleware"
)

const (
	livereloadPath    = "/livereload"
	readHeaderTimeout = 10 * time.Second
)

// Server holds the most recent page and serves it over HTTP.
type Server struct {
	cfg          *config.Config
	opts         Options
	errorAdapter *derrors.HTTPErrorAdapter
	startTime    time.Time
	srv          *http.Server
	addr         string

	mu        sync.RWMutex
	page      []byte
	hash      string
	lastError error
	builds    int
	lastBuild time.Time

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a server for cfg. Nothing listens until Start.
func New(cfg *config.Config, opts Options) *Server {
	s := &Server{
		cfg:          cfg,
		opts:         opts,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
		startTime:    time.Now(),
	}
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter)
	return s
}

// Publish replaces the served page and returns its hash.
func (s *Server) Publish(page []byte) string {
	sum := sha256.Sum256(page)
	hash := hex.EncodeToString(sum[:8])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.hash = hash
	s.lastError = nil
	s.builds++
	s.lastBuild = time.Now()
	return hash
}

// Fail records a failed build. The last good page keeps being served.
func (s *Server) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	s.builds++
	s.lastBuild = time.Now()
}

// Status reports the last build error and whether a good page exists.
func (s *Server) Status() (hasError bool, err error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError != nil, s.lastError, s.page != nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc(s.cfg.Monitoring.HealthPath, s.handleHealth)
	if s.cfg.Monitoring.Metrics.Enabled && s.opts.PrometheusHandler != nil {
		mux.Handle(s.cfg.Monitoring.Metrics.Path, s.opts.PrometheusHandler)
	}
	if s.opts.LiveReloadHub != nil {
		mux.Handle(livereloadPath, s.opts.LiveReloadHub)
	}
	return s.mchain(mux)
}

// Start binds the preview address and serves in the background. Binding
// happens before Start returns so port conflicts surface immediately.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Preview.Host, strconv.Itoa(s.cfg.Preview.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryNetwork, "failed to bind HTTP server").
			WithContext("addr", addr).
			UserAction().
			Build()
	}
	return s.StartWithListener(ln)
}

// StartWithListener serves on a pre-bound listener.
func (s *Server) StartWithListener(ln net.Listener) error {
	if ln == nil {
		return errors.New("httpserver: listener is required")
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.addr = ln.Addr().String()
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	slog.Info("HTTP server started", logfields.URL("http://"+s.addr))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the server and the live reload hub.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.LiveReloadHub != nil {
		s.opts.LiveReloadHub.Shutdown()
	}
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
