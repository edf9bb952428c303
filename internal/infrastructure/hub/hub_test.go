package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
)

type wireEvent struct {
	Kind    realtime.EventKind `json:"type"`
	ChatID  string             `json:"chat_id"`
	Payload json.RawMessage    `json:"payload"`
}

// joinDispatcher subscribes to chat rooms and acknowledges with the session id.
var joinDispatcher = DispatcherFunc(func(_ context.Context, s *Session, cmd realtime.Command) {
	switch cmd.Kind {
	case realtime.CommandJoin:
		s.Join(realtime.ChatRoom(cmd.ChatID))
		s.Send(realtime.NewEvent(realtime.EventJoined, cmd.ChatID, map[string]string{"session_id": s.ID()}))
	case realtime.CommandLeave:
		s.Leave(realtime.ChatRoom(cmd.ChatID))
	}
})

func newTestServer(t *testing.T, cfg Config) (*Hub, *httptest.Server) {
	t.Helper()
	h := New(cfg, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := realtime.Operator{ID: r.URL.Query().Get("operator")}
		_ = h.Serve(w, r, operator, joinDispatcher)
	}))
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, operatorID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?operator=" + operatorID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event wireEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no further frames")
}

func joinChat(t *testing.T, conn *websocket.Conn, chatID string) string {
	t.Helper()
	require.NoError(t, conn.WriteJSON(realtime.Command{Kind: realtime.CommandJoin, ChatID: chatID}))
	ack := readEvent(t, conn)
	require.Equal(t, realtime.EventJoined, ack.Kind)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(ack.Payload, &payload))
	return payload["session_id"]
}

func TestSessionsStartInOperatorRooms(t *testing.T) {
	h, srv := newTestServer(t, Config{})
	first := dial(t, srv, "op-1")
	second := dial(t, srv, "op-2")

	require.Eventually(t, func() bool { return h.RoomSize(realtime.OperatorsRoom) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, h.RoomSize(realtime.OperatorRoom("op-1")))

	require.NoError(t, h.Broadcast(context.Background(), realtime.Delivery{
		Rooms: []string{realtime.OperatorsRoom},
		Event: realtime.NewEvent(realtime.EventChatCreated, "chat-1", nil),
	}))
	assert.Equal(t, realtime.EventChatCreated, readEvent(t, first).Kind)
	assert.Equal(t, realtime.EventChatCreated, readEvent(t, second).Kind)

	require.NoError(t, h.Broadcast(context.Background(), realtime.Delivery{
		Rooms: []string{realtime.OperatorRoom("op-2")},
		Event: realtime.NewEvent(realtime.EventActivityUpdated, "", nil),
	}))
	assert.Equal(t, realtime.EventActivityUpdated, readEvent(t, second).Kind)
	expectSilence(t, first)
}

func TestBroadcastDeliversOncePerSession(t *testing.T) {
	h, srv := newTestServer(t, Config{})
	conn := dial(t, srv, "op-1")
	joinChat(t, conn, "chat-1")

	require.NoError(t, h.Broadcast(context.Background(), realtime.Delivery{
		Rooms: []string{realtime.ChatRoom("chat-1"), realtime.OperatorsRoom},
		Event: realtime.NewEvent(realtime.EventMessageCreated, "chat-1", nil),
	}))

	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventMessageCreated, event.Kind)
	assert.Equal(t, "chat-1", event.ChatID)
	expectSilence(t, conn)
}

func TestBroadcastExcludesSender(t *testing.T) {
	h, srv := newTestServer(t, Config{})
	sender := dial(t, srv, "op-1")
	watcher := dial(t, srv, "op-2")
	senderSession := joinChat(t, sender, "chat-1")
	joinChat(t, watcher, "chat-1")

	require.NoError(t, h.Broadcast(context.Background(), realtime.Delivery{
		Rooms:          []string{realtime.ChatRoom("chat-1")},
		ExcludeSession: senderSession,
		Event:          realtime.NewEvent(realtime.EventTyping, "chat-1", nil),
	}))

	assert.Equal(t, realtime.EventTyping, readEvent(t, watcher).Kind)
	expectSilence(t, sender)
}

func TestLeaveStopsDelivery(t *testing.T) {
	h, srv := newTestServer(t, Config{})
	conn := dial(t, srv, "op-1")
	joinChat(t, conn, "chat-1")

	require.NoError(t, conn.WriteJSON(realtime.Command{Kind: realtime.CommandLeave, ChatID: "chat-1"}))
	require.Eventually(t, func() bool { return h.RoomSize(realtime.ChatRoom("chat-1")) == 0 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Broadcast(context.Background(), realtime.Delivery{
		Rooms: []string{realtime.ChatRoom("chat-1")},
		Event: realtime.NewEvent(realtime.EventMessageCreated, "chat-1", nil),
	}))
	expectSilence(t, conn)
}

func TestDisconnectTearsDownMemberships(t *testing.T) {
	h, srv := newTestServer(t, Config{})
	conn := dial(t, srv, "op-1")
	joinChat(t, conn, "chat-1")
	require.Equal(t, 1, h.SessionCount())

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return h.SessionCount() == 0 &&
			h.RoomSize(realtime.ChatRoom("chat-1")) == 0 &&
			h.RoomSize(realtime.OperatorsRoom) == 0 &&
			h.RoomSize(realtime.OperatorRoom("op-1")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMalformedCommandGetsErrorEvent(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	conn := dial(t, srv, "op-1")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventError, event.Kind)
}

func TestSlowSessionIsClosedNotBlocking(t *testing.T) {
	h := New(Config{SendBuffer: 1}, zerolog.Nop())
	s := newSession(h, "slow", realtime.Operator{ID: "op-1"}, nil)
	require.True(t, h.register(s))
	require.True(t, h.Join(s, realtime.OperatorsRoom))

	rooms := []string{realtime.OperatorsRoom}
	assert.Equal(t, 1, h.DeliverEncoded(rooms, "", "chat.created", []byte(`{}`)))

	done := make(chan int, 1)
	go func() { done <- h.DeliverEncoded(rooms, "", "chat.created", []byte(`{}`)) }()
	select {
	case queued := <-done:
		assert.Equal(t, 0, queued)
	case <-time.After(time.Second):
		t.Fatal("delivery blocked on a full session buffer")
	}

	assert.True(t, s.closed())
	assert.Equal(t, 0, h.DeliverEncoded(rooms, "", "chat.created", []byte(`{}`)))
	h.unregister(s)
	assert.Equal(t, 0, h.RoomSize(realtime.OperatorsRoom))
}

func TestClosedHubRefusesSessions(t *testing.T) {
	h := New(Config{}, zerolog.Nop())
	h.Close()
	s := newSession(h, "late", realtime.Operator{ID: "op-1"}, nil)
	assert.False(t, h.register(s))
	assert.False(t, h.Join(s, realtime.OperatorsRoom))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(denied))

	assert.True(t, originChecker([]string{"*"})(denied))
}
