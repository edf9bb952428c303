package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
)

// Session is one connected operator socket.
type Session struct {
	id       string
	operator realtime.Operator
	hub      *Hub
	conn     *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// rooms is guarded by hub.mu.
	rooms map[string]struct{}
}

func newSession(h *Hub, id string, operator realtime.Operator, conn *websocket.Conn) *Session {
	return &Session{
		id:       id,
		operator: operator,
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBuffer),
		done:     make(chan struct{}),
		rooms:    make(map[string]struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Operator returns the authenticated operator behind the session.
func (s *Session) Operator() realtime.Operator { return s.operator }

// Join subscribes the session to room.
func (s *Session) Join(room string) bool { return s.hub.Join(s, room) }

// Leave unsubscribes the session from room.
func (s *Session) Leave(room string) { s.hub.Leave(s, room) }

// InRoom reports whether the session is subscribed to room.
func (s *Session) InRoom(room string) bool {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	_, ok := s.rooms[room]
	return ok
}

// Send queues an event for this session only.
func (s *Session) Send(event realtime.Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}
	return s.enqueue(data)
}

// enqueue never blocks. A full buffer closes the session so the client
// reconnects and resyncs instead of silently missing events.
func (s *Session) enqueue(data []byte) bool {
	if s.closed() {
		return false
	}

	select {
	case s.send <- data:
		return true
	default:
		s.close()
		return false
	}
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) readPump(ctx context.Context, dispatcher Dispatcher) {
	defer s.hub.unregister(s)

	cfg := s.hub.cfg
	s.conn.SetReadLimit(cfg.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Debug().Err(err).Str("session_id", s.id).Msg("websocket read failed")
			}
			return
		}

		var cmd realtime.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.Send(realtime.NewEvent(realtime.EventError, "", realtime.ErrorPayload{
				Message: "malformed command",
				Type:    "validation_error",
			}))
			continue
		}
		if dispatcher != nil {
			dispatcher.Dispatch(ctx, s, cmd)
		}
	}
}

func (s *Session) writePump() {
	cfg := s.hub.cfg
	pingPeriod := cfg.PongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			s.flush(cfg.WriteWait)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(cfg.WriteWait))
			return
		}
	}
}

// flush writes whatever is still buffered before the close frame.
func (s *Session) flush(writeWait time.Duration) {
	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
