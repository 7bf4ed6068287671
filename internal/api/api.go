// Package api provides HTTP handlers and the main API server logic for
// Formi.
//
// It exposes the chat endpoint driving the booking dialogue plus read-only
// endpoints over the static reference data (cities, outlets, menu, FAQs).
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ku28/formi/internal/dialogue"
	"github.com/ku28/formi/internal/knowledge"
	"github.com/ku28/formi/internal/store"
)

// Default server configuration constants.
const (
	// DefaultAddr is the default listen address for the API server.
	DefaultAddr = ":8080"
	// DefaultReadTimeout bounds how long reading a request may take.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds how long writing a response may take.
	DefaultWriteTimeout = 30 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the conversation driver and knowledge base to HTTP.
type Server struct {
	driver   *dialogue.Driver
	base     *knowledge.Base
	sessions store.SessionStore
	addr     string
}

// NewServer creates an API server over the given collaborators.
func NewServer(driver *dialogue.Driver, base *knowledge.Base, sessions store.SessionStore, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{driver: driver, base: base, sessions: sessions, addr: cfg.Addr}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/cities", s.citiesHandler)
	mux.HandleFunc("/cities/", s.outletsHandler)
	mux.HandleFunc("/menu", s.menuHandler)
	mux.HandleFunc("/faq/", s.faqHandler)
	mux.HandleFunc("/sessions/", s.sessionHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	slog.Info("Formi API listening", "addr", s.addr)
	return srv.ListenAndServe()
}
