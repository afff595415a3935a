// Package debugserver exposes live frame metrics over HTTP while the engine
// runs: a prometheus scrape endpoint, a JSON summary and a websocket feed.
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/spritecore/internal/metrics"
)

// DefaultPushInterval is how often websocket clients receive a snapshot.
const DefaultPushInterval = 250 * time.Millisecond

// Source is the read side of a metrics collector.
type Source interface {
	Stats() metrics.Stats
	Last() metrics.Frame
	Violations() []string
}

// Snapshot is the JSON body served by /stats and pushed over /ws/stats.
type Snapshot struct {
	Script     string        `json:"script"`
	Stats      metrics.Stats `json:"stats"`
	Last       metrics.Frame `json:"last"`
	Violations []string      `json:"violations"`
}

// Config holds the router dependencies.
type Config struct {
	Script       string
	Source       Source            // required
	Exporter     *metrics.Exporter // serves /metrics when set
	CORSOrigins  []string
	PushInterval time.Duration
	Logger       *log.Logger
}

type handlers struct {
	cfg      Config
	upgrader websocket.Upgrader
}

// NewRouter builds the HTTP routes. It starts no goroutines and opens no
// listeners, so it can be mounted on an httptest server.
func NewRouter(cfg Config) *chi.Mux {
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = DefaultPushInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	h := &handlers{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", h.handleHealth)
	r.Get("/stats", h.handleStats)
	r.Get("/ws/stats", h.handleStatsSocket)
	if cfg.Exporter != nil {
		r.Handle("/metrics", cfg.Exporter.Handler())
	}
	return r
}

func (h *handlers) snapshot() Snapshot {
	v := h.cfg.Source.Violations()
	if v == nil {
		v = []string{}
	}
	return Snapshot{
		Script:     h.cfg.Script,
		Stats:      h.cfg.Source.Stats(),
		Last:       h.cfg.Source.Last(),
		Violations: v,
	}
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot()); err != nil {
		h.cfg.Logger.Warn("encoding stats failed", "error", err)
	}
}

// handleStatsSocket pushes a snapshot every PushInterval until the client
// goes away.
func (h *handlers) handleStatsSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	h.cfg.Logger.Debug("stats client connected", "remote", r.RemoteAddr)

	// The read loop only exists to notice the close frame.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.cfg.PushInterval)
	defer ticker.Stop()
	for {
		if err := conn.WriteJSON(h.snapshot()); err != nil {
			h.cfg.Logger.Debug("stats client dropped", "remote", r.RemoteAddr, "error", err)
			return
		}
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// Server runs the router on a TCP listener.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *log.Logger
}

// Listen binds addr and returns a server ready to Serve. Use ":0" to pick a
// free port.
func Listen(addr string, cfg Config) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		srv: &http.Server{
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: cfg.Logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until Shutdown is called.
func (s *Server) Serve() error {
	s.logger.Info("debug server listening", "addr", s.Addr())
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
