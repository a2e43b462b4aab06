package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jpalmerr/seatwatch/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE
	// write operation. This prevents goroutine leaks when clients are
	// slow or disconnected. Must be <= shutdown timeout to ensure
	// clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// defaultTitle is used when no custom label is configured.
	defaultTitle = "SeatWatch"

	// titlePlaceholder is the marker in HTML that gets replaced with
	// the configured label.
	titlePlaceholder = "{{.Title}}"
)

// Server handles HTTP requests for the status page and API.
//
// Server provides four endpoints:
//   - GET /: serves the embedded status page
//   - GET /api/sample: latest sample as JSON (404 until the first cycle)
//   - GET /api/history: recent samples as JSON, oldest first
//   - GET /api/sse: Server-Sent Events stream of new samples
//
// The server is designed for graceful shutdown via context
// cancellation.
type Server struct {
	store      store.Store
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: store implementation holding the samples
//   - port: TCP port to listen on
//   - assets: embedded filesystem with the status page (may be nil)
//   - title: page title (defaults to "SeatWatch" if empty)
//   - logger: logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	return &Server{
		store:  st,
		port:   port,
		assets: assets,
		title:  title,
		logger: logger,
	}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the
// server is listening. The server runs until the context is
// cancelled, at which point it initiates a graceful shutdown with a
// 5-second timeout.
//
// Returns an error if the server fails to bind to the configured
// port.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/sample", s.handleSample)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/sse", s.handleSSE)

	// serve the status page
	if s.assets != nil {
		mux.HandleFunc("/", s.handlePage)
	}

	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler: mux,
		// BaseContext derives all request contexts from the server
		// context, so cancelling ctx also cancels long-running
		// handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("status server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("status server shutdown error", "error", err)
		}
	}()

	return nil
}

// handlePage serves the embedded status page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.assets == nil {
		http.Error(w, "Status page not found", http.StatusInternalServerError)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Status page not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write status page response", "error", err)
	}
}

// handleSample returns the latest sample as JSON, or 404 if no check
// cycle has completed yet.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	latest, ok := s.store.Latest()
	if !ok {
		http.Error(w, "No sample yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(latest); err != nil {
		s.logger.Error("failed to encode sample response", "error", err)
	}
}

// handleHistory returns recent samples as JSON, oldest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	history := s.store.History()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(history); err != nil {
		s.logger.Error("failed to encode history response", "error", err)
	}
}

// handleSSE streams new samples via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when
// clients are slow or disconnected. Without deadlines, a blocked
// Fprintf call would prevent the handler from detecting context
// cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush
	// operations.
	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some
	// ResponseWriter impls)
	deadlinesSupported := true

	// writeAndFlush writes SSE data with a deadline so a slow or
	// disconnected client times out instead of blocking forever.
	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	// set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe to store updates
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// send the latest sample first so new clients render immediately
	if latest, ok := s.store.Latest(); ok {
		data, err := json.Marshal(latest)
		if err == nil {
			if err := writeAndFlush(data); err != nil {
				return
			}
		}
	}

	// stream updates
	for {
		select {
		case sample, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(sample)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via
			// BaseContext, so this fires on both client disconnect
			// AND server shutdown
			return
		}
	}
}
