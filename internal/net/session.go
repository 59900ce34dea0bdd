package net

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grokyworld/server/internal/handler"
	"go.uber.org/zap"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Session is the one connected client. Network I/O runs in dedicated
// goroutines; the game loop only sees decoded intents and queues frames.
type Session struct {
	ID         uuid.UUID
	RemoteAddr string
	conn       *websocket.Conn

	out          chan []byte // writer goroutine reads frames from here
	writeTimeout time.Duration
	submit       func(handler.Intent) bool

	intents atomic.Int64

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func newSession(conn *websocket.Conn, outSize int, writeTimeout time.Duration, submit func(handler.Intent) bool, log *zap.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:           id,
		RemoteAddr:   conn.RemoteAddr().String(),
		conn:         conn,
		out:          make(chan []byte, outSize),
		writeTimeout: writeTimeout,
		submit:       submit,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Stringer("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues a frame without blocking. A client that cannot keep up is
// disconnected.
func (s *Session) Send(frame []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.out <- frame:
		return true
	default:
		s.log.Warn("output queue full, dropping slow client")
		s.Close()
		return false
	}
}

// Close shuts the session down once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool { return s.closed.Load() }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.closeCh }

// Intents returns how many intents the client got into the game queue.
func (s *Session) Intents() int { return int(s.intents.Load()) }

// readLoop decodes JSON intents and hands them to the game loop. Malformed
// frames are logged and skipped; a full intent queue drops the intent.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		var in handler.Intent
		if err := json.Unmarshal(raw, &in); err != nil || in.Type == "" {
			s.log.Debug("malformed intent", zap.ByteString("raw", raw), zap.Error(err))
			continue
		}
		if !s.submit(in) {
			s.log.Warn("intent queue full, dropping intent", zap.String("type", string(in.Type)))
			continue
		}
		s.intents.Add(1)
	}
}

// writeLoop writes queued frames and keeps the connection alive with pings.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case frame := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}
