// Package preview serves a rendered template over HTTP, re-rendering as
// the underlying files change.
package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jcreekmore/rustache/internal/workspace"
)

// Server serves the rendered workspace template. Every request renders
// from the files on disk, so responses always reflect the latest edits;
// the watcher only drives the browser reload signal.
type Server struct {
	ws     *workspace.Workspace
	addr   string
	watch  bool
	logger *slog.Logger

	mu      sync.Mutex
	version int64
}

// Config holds configuration for the preview server.
type Config struct {
	Workspace *workspace.Workspace
	Addr      string
	Watch     bool
	Logger    *slog.Logger
}

// NewServer creates a preview server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		ws:     cfg.Workspace,
		addr:   cfg.Addr,
		watch:  cfg.Watch,
		logger: logger,
	}
}

// Serve starts the preview server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting preview server", "addr", fmt.Sprintf("http://%s", s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down preview server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleRender)
	r.Get("/source", s.handleSource)
	r.Get("/version", s.handleVersion)

	return r
}

// watchFiles watches the workspace inputs and bumps the reload version.
func (s *Server) watchFiles(ctx context.Context) error {
	return Watch(ctx, s.ws, s.logger, s.bump)
}

// Version reports the invalidation counter, bumped on every relevant
// file change.
func (s *Server) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Server) bump() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

func (s *Server) handleRender(w http.ResponseWriter, _ *http.Request) {
	out, err := s.ws.RenderString()
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "render failed: %v\n", err)
		if out != "" {
			fmt.Fprintf(w, "\n--- output before the error ---\n%s", out)
		}
		return
	}

	contentType := http.DetectContentType([]byte(out))
	if s.watch && strings.HasPrefix(contentType, "text/html") {
		out += reloadScript
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleSource(w http.ResponseWriter, _ *http.Request) {
	source, err := s.ws.TemplateSource()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, source)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, "{\"version\":%d}\n", s.Version())
}

// reloadScript is appended to HTML previews when watching; it reloads
// the page once /version reports a change.
const reloadScript = `<script>
(function () {
  var current = null;
  setInterval(function () {
    fetch("/version").then(function (r) { return r.json(); }).then(function (v) {
      if (current === null) { current = v.version; return; }
      if (v.version !== current) { location.reload(); }
    }).catch(function () {});
  }, 1000);
})();
</script>
`
