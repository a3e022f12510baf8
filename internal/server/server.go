// Package server exposes the addon protocol surface: manifest, catalog,
// meta, and stream routes prefixed by a per-user config segment, plus
// the segment-rewrite endpoint and the session and encryption APIs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tubio/internal/config"
	"tubio/internal/logging"
	"tubio/internal/segments"
	"tubio/internal/services/dearrow"
	"tubio/internal/services/sponsorblock"
	"tubio/internal/session"
	"tubio/internal/usercfg"
	"tubio/internal/ytdlp"
)

// Version identifies this service in the manifest.
const Version = "1.0.0"

// Server hosts the HTTP surface.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	crypto   *usercfg.CryptoContext
	store    *session.Store
	runner   *ytdlp.Runner
	rewriter *segments.Rewriter
	sponsor  *sponsorblock.Client
	branding *dearrow.Client

	listener net.Listener
	server   *http.Server
}

// New assembles the router and its dependencies.
func New(cfg *config.Config, logger *slog.Logger, crypto *usercfg.CryptoContext, store *session.Store, runner *ytdlp.Runner, rewriter *segments.Rewriter, sponsor *sponsorblock.Client, branding *dearrow.Client) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "server"),
		crypto:   crypto,
		store:    store,
		runner:   runner,
		rewriter: rewriter,
		sponsor:  sponsor,
		branding: branding,
	}
	if crypto != nil && crypto.KeyGenerated() {
		s.logger.Warn("using a randomly generated encryption key; set crypto.key or encrypted tokens will not survive a restart")
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.cors)
	r.Use(s.logRequests)

	r.Post("/encrypt", s.handleEncrypt)
	r.Get("/stream/{playlist}", s.handleRewrite)

	r.Post("/session", s.handleSessionCreate)
	r.Get("/session/{id}", s.handleSessionRead)
	r.Put("/session/{id}", s.handleSessionUpdate)
	r.Delete("/session/{id}", s.handleSessionDelete)

	r.Get("/{config}/manifest.json", s.handleManifest)
	r.Get("/{config}/catalog/{type}/{id}", s.handleCatalog)
	r.Get("/{config}/catalog/{type}/{id}/{extra}", s.handleCatalog)
	r.Get("/{config}/meta/{type}/{id}", s.handleMeta)
	r.Get("/{config}/stream/{type}/{id}", s.handleStream)

	readTimeout := time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	writeTimeout := time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.Bind)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// selfURL is the externally visible base for links the service builds
// back to itself. Configured base wins; otherwise derive from the request.
func (s *Server) selfURL(r *http.Request) string {
	if base := strings.TrimSpace(s.cfg.Server.BaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
