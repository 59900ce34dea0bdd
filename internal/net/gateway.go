package net

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grokyworld/server/internal/config"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/system"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore records connects and disconnects. Optional.
type SessionStore interface {
	Opened(ctx context.Context, id uuid.UUID, remoteAddr string) error
	Closed(ctx context.Context, id uuid.UUID, intents int) error
}

// World is what the gateway needs from the game.
type World interface {
	Submit(in handler.Intent) bool
	Snapshot() *world.Snapshot
}

// Frame is one outbound websocket message.
type Frame struct {
	Type string `json:"type"` // "snapshot" or "events"
	Data any    `json:"data"`
}

// Stats is served on /api/stats.
type Stats struct {
	Connected bool   `json:"connected"`
	Session   string `json:"session,omitempty"`
	Intents   int64  `json:"intents"`
	Dropped   int64  `json:"dropped"`
	Published int64  `json:"published"`
	Level     int    `json:"level"`
	Uptime    string `json:"uptime"`
}

// Gateway bridges a single websocket client to the game: intents in,
// snapshots and event batches out. A second client is turned away while one
// is connected.
type Gateway struct {
	cfg      config.GatewayConfig
	world    World
	sessions SessionStore
	log      *zap.Logger
	started  time.Time

	upgrader websocket.Upgrader
	mu       sync.Mutex // guards active
	active   *Session

	intents   atomic.Int64
	dropped   atomic.Int64
	published atomic.Int64

	srv *http.Server
}

// NewGateway creates a gateway. store may be nil.
func NewGateway(cfg config.GatewayConfig, w World, store SessionStore, log *zap.Logger) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		world:    w,
		sessions: store,
		log:      log,
		started:  time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	g.srv = &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return g
}

// Handler returns the HTTP routes of the gateway.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	path := g.cfg.Path
	if path == "" {
		path = "/ws"
	}
	mux.HandleFunc(path, g.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/stats", g.serveStats)
	return mux
}

// ListenAndServe serves until Shutdown. It returns nil after a clean
// shutdown.
func (g *Gateway) ListenAndServe() error {
	g.log.Info("gateway listening", zap.String("addr", g.cfg.BindAddress), zap.String("path", g.cfg.Path))
	if err := g.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drops the client.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if s := g.current(); s != nil {
		s.Close()
	}
	return g.srv.Shutdown(ctx)
}

func (g *Gateway) authorized(r *http.Request) bool {
	if g.cfg.TokenHash == "" {
		return true
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(g.cfg.TokenHash), []byte(token)) == nil
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(r) {
		g.log.Warn("gateway: rejected token", zap.String("remote", r.RemoteAddr))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if g.current() != nil {
		http.Error(w, "a client is already connected", http.StatusConflict)
		return
	}
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("gateway: upgrade failed", zap.Error(err))
		return
	}

	s := newSession(conn, g.cfg.OutQueueSize, g.cfg.WriteTimeout, g.submit, g.log)
	g.mu.Lock()
	if g.active != nil && !g.active.IsClosed() {
		g.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "a client is already connected"))
		conn.Close()
		return
	}
	g.active = s
	g.mu.Unlock()

	g.log.Info("client connected", zap.Stringer("session", s.ID), zap.String("remote", s.RemoteAddr))
	if g.sessions != nil {
		if err := g.sessions.Opened(r.Context(), s.ID, s.RemoteAddr); err != nil {
			g.log.Warn("session record failed", zap.Error(err))
		}
	}
	s.Start()
	if snap := g.world.Snapshot(); snap != nil {
		if frame, err := json.Marshal(Frame{Type: "snapshot", Data: snap}); err == nil {
			s.Send(frame)
		}
	}
	go g.watch(s)
}

// watch frees the client slot when the session ends.
func (g *Gateway) watch(s *Session) {
	<-s.Done()
	g.mu.Lock()
	if g.active == s {
		g.active = nil
	}
	g.mu.Unlock()
	g.log.Info("client disconnected", zap.Stringer("session", s.ID), zap.Int("intents", s.Intents()))
	if g.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.sessions.Closed(ctx, s.ID, s.Intents()); err != nil {
			g.log.Warn("session record failed", zap.Error(err))
		}
	}
}

func (g *Gateway) submit(in handler.Intent) bool {
	if !g.world.Submit(in) {
		g.dropped.Add(1)
		return false
	}
	g.intents.Add(1)
	return true
}

func (g *Gateway) current() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active != nil && g.active.IsClosed() {
		return nil
	}
	return g.active
}

// Publish implements system.Publisher. Called from the game loop; never
// blocks.
func (g *Gateway) Publish(snap *world.Snapshot, events []system.OutboundEvent) {
	s := g.current()
	if s == nil {
		return
	}
	if len(events) > 0 {
		frame, err := json.Marshal(Frame{Type: "events", Data: events})
		if err != nil {
			g.log.Error("encode events", zap.Error(err))
		} else if !s.Send(frame) {
			return
		}
	}
	frame, err := json.Marshal(Frame{Type: "snapshot", Data: snap})
	if err != nil {
		g.log.Error("encode snapshot", zap.Error(err))
		return
	}
	if s.Send(frame) {
		g.published.Add(1)
	}
}

func (g *Gateway) serveStats(w http.ResponseWriter, r *http.Request) {
	st := Stats{
		Intents:   g.intents.Load(),
		Dropped:   g.dropped.Load(),
		Published: g.published.Load(),
		Uptime:    time.Since(g.started).Round(time.Second).String(),
	}
	if s := g.current(); s != nil {
		st.Connected, st.Session = true, s.ID.String()
	}
	if snap := g.world.Snapshot(); snap != nil {
		st.Level = snap.LevelID
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}
