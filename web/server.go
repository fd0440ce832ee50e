// Package web serves the search and indexing operations over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"file_search_go/config"
	"file_search_go/history"
	"file_search_go/logger"
	"file_search_go/searcher"
)

//go:embed static/index.html
var staticFiles embed.FS

// Config holds server configuration.
type Config struct {
	Bind string
	Port int
	// App supplies search and indexing defaults.
	App *config.Config
	// Stores is the set of stores searched.
	Stores *StoreSet
	// History records searches; nil disables the history endpoints.
	History *history.History
	// Opener opens store files; nil selects searcher.OpenStore.
	Opener searcher.StoreOpener
}

// Server wraps the HTTP server and router.
type Server struct {
	cfg     Config
	router  *chi.Mux
	engine  *searcher.Engine
	metrics *metrics
	// indexing allows one indexing run at a time.
	indexing sync.Mutex
}

// New returns an initialized server.
func New(cfg Config) *Server {
	if cfg.App == nil {
		cfg.App = config.Default()
	}
	if cfg.Stores == nil {
		cfg.Stores = NewStoreSet(nil, cfg.App.Store.Suffix)
	}

	s := &Server{
		cfg:     cfg,
		engine:  searcher.NewEngine(cfg.Opener),
		metrics: newMetrics(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndexPage)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/index", s.handleIndex)
		r.Get("/databases", s.handleDatabases)
		r.Get("/export", s.handleExport)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Delete("/history/{id}", s.handleRemoveHistory)
	})
	return r
}

// Router returns the underlying router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Bind, fmt.Sprint(s.cfg.Port))
}

// Start begins serving until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.Stores.Watch(ctx); err != nil {
		logger.Warn("store set will not follow directory changes", "err", err)
	}

	srv := &http.Server{Addr: s.Addr(), Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		ctxTo, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxTo); err != nil {
			logger.Warn("server shutdown", "err", err)
		}
	}()

	logger.Info("web server listening", "addr", s.Addr(), "stores", len(s.cfg.Stores.Paths()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error serving http: %w", err)
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
