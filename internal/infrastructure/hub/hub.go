// Package hub keeps this instance's websocket sessions and their room
// memberships, and delivers realtime events to them.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/metrics"
)

// Config bounds session resources.
type Config struct {
	SendBuffer      int
	MaxMessageBytes int64
	PongWait        time.Duration
	WriteWait       time.Duration
	AllowOrigins    []string
}

func (c *Config) normalize() {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 64 * 1024
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
}

// Dispatcher handles commands read from a session. Calls for one session are
// serialized in the order the frames arrived.
type Dispatcher interface {
	Dispatch(ctx context.Context, session *Session, cmd realtime.Command)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, session *Session, cmd realtime.Command)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, session *Session, cmd realtime.Command) {
	f(ctx, session, cmd)
}

// Hub is the local realtime.Broadcaster.
type Hub struct {
	cfg      Config
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]map[*Session]struct{}
	closed   bool
}

// New creates an empty hub.
func New(cfg Config, log zerolog.Logger) *Hub {
	cfg.normalize()
	h := &Hub{
		cfg:      cfg,
		log:      log.With().Str("component", "realtime-hub").Logger(),
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[*Session]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowOrigins),
	}
	return h
}

// Broadcast encodes the event once and queues it on every session of every
// addressed room. It never blocks on a slow session.
func (h *Hub) Broadcast(_ context.Context, delivery realtime.Delivery) error {
	data, err := json.Marshal(delivery.Event)
	if err != nil {
		return err
	}
	h.DeliverEncoded(delivery.Rooms, delivery.ExcludeSession, string(delivery.Event.Kind), data)
	return nil
}

// DeliverEncoded queues an already encoded event and returns how many
// sessions accepted it. A session present in several rooms is counted once.
func (h *Hub) DeliverEncoded(rooms []string, excludeSession, kind string, data []byte) int {
	targets := h.collect(rooms, excludeSession)

	queued := 0
	for _, s := range targets {
		if s.enqueue(data) {
			queued++
			metrics.EventsDelivered.WithLabelValues(kind).Inc()
			continue
		}
		metrics.EventsDropped.WithLabelValues(kind).Inc()
		h.log.Warn().
			Str("session_id", s.id).
			Str("operator_id", s.operator.ID).
			Str("event", kind).
			Msg("session send buffer full, closing slow session")
	}
	return queued
}

func (h *Hub) collect(rooms []string, excludeSession string) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Session]struct{})
	var targets []*Session
	for _, room := range rooms {
		for s := range h.rooms[room] {
			if s.id == excludeSession || s.closed() {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			targets = append(targets, s)
		}
	}
	return targets
}

// Join subscribes the session to room. Joining twice is a no-op.
func (h *Hub) Join(s *Session, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, live := h.sessions[s.id]; !live {
		return false
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.rooms[room] = struct{}{}
	return true
}

// Leave unsubscribes the session from room.
func (h *Hub) Leave(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, room)
}

func (h *Hub) leaveLocked(s *Session, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(s.rooms, room)
}

// RoomSize returns the number of local sessions in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s.id] = s
	metrics.RecordSessionOpened()
	return true
}

// unregister drops the session and every room membership it held.
func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.id)
	for room := range s.rooms {
		h.leaveLocked(s, room)
	}
	h.mu.Unlock()

	metrics.RecordSessionClosed()
	s.close()
}

// Close disconnects every session and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		h.unregister(s)
	}
}

// Serve upgrades the request and runs the session until the peer goes away
// or the hub closes. The session starts in the operators room and the
// operator's personal room.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, operator realtime.Operator, dispatcher Dispatcher) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	s := newSession(h, uuid.NewString(), operator, conn)
	if !h.register(s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.cfg.WriteWait))
		_ = conn.Close()
		return nil
	}
	h.Join(s, realtime.OperatorsRoom)
	h.Join(s, realtime.OperatorRoom(operator.ID))

	h.log.Info().
		Str("session_id", s.id).
		Str("operator_id", operator.ID).
		Msg("websocket session opened")

	go s.writePump()
	s.readPump(r.Context(), dispatcher)

	h.log.Info().
		Str("session_id", s.id).
		Str("operator_id", operator.ID).
		Msg("websocket session closed")
	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		}
		set[strings.ToLower(origin)] = struct{}{}
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}
