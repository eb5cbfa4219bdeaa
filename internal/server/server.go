// Package server hosts bubble charts in the browser.
//
// Every visitor gets a session with its own controller. The page draws the
// server-rendered SVG and posts pointer events back; each event answers
// with the re-rendered chart.
package server

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/notify"
	"github.com/matzehuels/bubblechart/pkg/session"
	"github.com/matzehuels/bubblechart/pkg/tree"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:8080"

// Config holds configuration for the chart server.
type Config struct {
	Addr   string
	Tree   *tree.Node
	Widget widget.Config

	// Notifier receives every click event of every session. Nil disables
	// emission.
	Notifier notify.Notifier

	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// WatchPath, when set, is the data file to reload on change.
	WatchPath string

	Logger *log.Logger
}

// Server is the chart server.
type Server struct {
	cfg      Config
	logger   *log.Logger
	sessions *session.Store
	router   chi.Router

	mu   sync.RWMutex
	root *tree.Node
}

// New creates a server. The tree and widget configuration are validated
// by mounting a throwaway controller.
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	cfg.Widget.SetDefaults()
	cfg.Tree = widget.ApplyPalette(cfg.Tree, cfg.Widget)
	if _, err := widget.New(cfg.Tree, cfg.Widget); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger.WithPrefix("server"),
		root:   cfg.Tree,
	}
	s.sessions = session.NewStore(cfg.SessionTTL, s.mount)
	s.sessions.SetLogger(s.logger)
	s.router = s.routes()
	return s, nil
}

// mount creates the controller of a new session.
func (s *Server) mount(id string) (*widget.Controller, error) {
	return widget.New(s.tree(), s.cfg.Widget,
		widget.WithNotifier(s.cfg.Notifier),
		widget.WithLogger(s.logger.With("session", id)),
	)
}

func (s *Server) tree() *tree.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/chart.svg", s.handleChart)
		r.Get("/state", s.handleState)
		r.Post("/click", s.handleClick)
		r.Post("/hover", s.handleHover)
		r.Post("/unhover", s.handleUnhover)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", s.cfg.Addr)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("serving chart", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		return s.sessions.Run(egctx, s.cfg.CleanupInterval)
	})

	if s.cfg.WatchPath != "" {
		eg.Go(func() error {
			return s.watch(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeNetwork, err, "server error")
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Reload reads the watched data file and remounts every session.
func (s *Server) Reload(ctx context.Context) error {
	root, err := tree.ImportJSON(s.cfg.WatchPath)
	if err != nil {
		return err
	}
	for _, p := range tree.Validate(root) {
		s.logger.Warn("tree problem", "error", p)
	}
	root = widget.ApplyPalette(root, s.cfg.Widget)
	if _, err := widget.New(root, s.cfg.Widget); err != nil {
		return err
	}

	s.mu.Lock()
	s.root = root
	s.mu.Unlock()

	if err := s.sessions.Remount(ctx, root); err != nil {
		return err
	}
	s.logger.Info("data reloaded", "file", s.cfg.WatchPath, "leaves", len(tree.Leaves(root)))
	return nil
}

// watch reloads the data file when it changes. The parent directory is
// watched because editors often replace files instead of writing them.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.cfg.WatchPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch data file", "file", target, "error", err)
		return nil
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				if err := s.Reload(ctx); err != nil {
					s.logger.Error("reload failed", "error", errors.UserMessage(err))
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// requestLogger logs one debug line per request.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
