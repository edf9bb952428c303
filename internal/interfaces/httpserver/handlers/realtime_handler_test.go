package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/hub"
	activityrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/activity"
	conversationrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/conversation"
	directoryrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/interfaces/httpserver/handlers"
)

type wireEvent struct {
	Kind    realtime.EventKind `json:"type"`
	ChatID  string             `json:"chat_id"`
	Payload json.RawMessage    `json:"payload"`
}

type socketFixture struct {
	server        *httptest.Server
	conversations conversation.Service
	gateway       ingest.Gateway
	chat          *conversation.Chat
}

func newSocketFixture(t *testing.T) *socketFixture {
	t.Helper()
	log := zerolog.Nop()
	ctx := context.Background()

	h := hub.New(hub.Config{}, log)
	notifier := realtime.NewNotifier(h, log)
	dir := directory.NewService(directoryrepo.NewInMemoryRepository(), log)
	conversations := conversation.NewService(conversationrepo.NewInMemoryRepository(), conversation.Options{
		Retry: retry.NoRetryPolicy(),
	}, log)
	activitySvc := activity.NewService(activityrepo.NewInMemoryRepository(), retry.NoRetryPolicy(), log)
	gateway := ingest.NewGateway(conversations, dir, activitySvc, notifier, ingest.Options{}, log)
	handler := handlers.NewRealtimeHandler(h, conversations, gateway, notifier, log)

	platform, err := dir.CreatePlatform(ctx, "Upwork", "")
	require.NoError(t, err)
	_, err = dir.CreateAccount(ctx, platform.ID, "Main", "recruiter", true)
	require.NoError(t, err)
	first, err := gateway.Ingest(ctx, ingest.Request{
		Target:  ingest.Target{PlatformID: platform.ID, CandidateUsername: "jane"},
		Author:  ingest.Author{Kind: conversation.AuthorCandidate},
		Content: "hello",
	})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := realtime.Operator{ID: r.URL.Query().Get("operator"), Name: "Operator " + r.URL.Query().Get("operator")}
		_ = handler.Serve(w, r, operator)
	}))
	t.Cleanup(func() {
		h.Close()
		server.Close()
	})

	return &socketFixture{server: server, conversations: conversations, gateway: gateway, chat: first.Chat}
}

func (f *socketFixture) dial(t *testing.T, operatorID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/?operator=" + operatorID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// next reads frames until one of kind arrives.
func next(t *testing.T, conn *websocket.Conn, kind realtime.EventKind) wireEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", kind)
		var event wireEvent
		require.NoError(t, json.Unmarshal(data, &event))
		if event.Kind == kind {
			return event
		}
	}
}

// never asserts no frame of kind arrives within a short window.
func never(t *testing.T, conn *websocket.Conn, kind realtime.EventKind) {
	t.Helper()
	deadline := time.Now().Add(200 * time.Millisecond)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var event wireEvent
		require.NoError(t, json.Unmarshal(data, &event))
		require.NotEqual(t, kind, event.Kind, "unexpected %s", kind)
	}
}

func send(t *testing.T, conn *websocket.Conn, cmd realtime.Command) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
}

func TestJoinMarksChatRead(t *testing.T) {
	f := newSocketFixture(t)
	conn := f.dial(t, "op-1")

	send(t, conn, realtime.Command{Kind: realtime.CommandJoin, ChatID: f.chat.ID})
	ack := next(t, conn, realtime.EventJoined)
	var joined handlers.JoinedPayload
	require.NoError(t, json.Unmarshal(ack.Payload, &joined))
	assert.NotEmpty(t, joined.SessionID)
	assert.Equal(t, int64(1), joined.MessagesMarked)
	assert.Equal(t, 0, joined.Chat.UnreadCount)

	read := next(t, conn, realtime.EventMessagesRead)
	var payload realtime.ReadPayload
	require.NoError(t, json.Unmarshal(read.Payload, &payload))
	assert.Equal(t, "op-1", payload.Operator.ID)

	chat, err := f.conversations.GetChat(context.Background(), f.chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, chat.UnreadCount)
}

func TestTypingReachesOthersOnly(t *testing.T) {
	f := newSocketFixture(t)
	typist := f.dial(t, "op-1")
	watcher := f.dial(t, "op-2")

	send(t, typist, realtime.Command{Kind: realtime.CommandJoin, ChatID: f.chat.ID})
	next(t, typist, realtime.EventJoined)
	send(t, watcher, realtime.Command{Kind: realtime.CommandJoin, ChatID: f.chat.ID})
	next(t, watcher, realtime.EventJoined)

	send(t, typist, realtime.Command{Kind: realtime.CommandTyping, ChatID: f.chat.ID})
	event := next(t, watcher, realtime.EventTyping)
	var payload realtime.TypingPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "op-1", payload.Operator.ID)
	never(t, typist, realtime.EventTyping)

	send(t, typist, realtime.Command{Kind: realtime.CommandTypingStop, ChatID: f.chat.ID})
	next(t, watcher, realtime.EventTypingStop)
}

func TestTypingRequiresJoin(t *testing.T) {
	f := newSocketFixture(t)
	conn := f.dial(t, "op-1")

	send(t, conn, realtime.Command{Kind: realtime.CommandTyping, ChatID: f.chat.ID})
	event := next(t, conn, realtime.EventError)
	assert.Equal(t, f.chat.ID, event.ChatID)
}

func TestSendMessageOverSocket(t *testing.T) {
	f := newSocketFixture(t)
	sender := f.dial(t, "op-1")
	watcher := f.dial(t, "op-2")
	send(t, watcher, realtime.Command{Kind: realtime.CommandJoin, ChatID: f.chat.ID})
	next(t, watcher, realtime.EventJoined)

	send(t, sender, realtime.Command{Kind: realtime.CommandSendMessage, ChatID: f.chat.ID, Content: "thanks for reaching out"})

	// The personal activity update and the direct message may arrive in either order.
	seen := map[realtime.EventKind]wireEvent{}
	require.NoError(t, sender.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(seen) < 2 {
		_, data, err := sender.ReadMessage()
		require.NoError(t, err)
		var event wireEvent
		require.NoError(t, json.Unmarshal(data, &event))
		if event.Kind == realtime.EventMessageCreated || event.Kind == realtime.EventActivityUpdated {
			seen[event.Kind] = event
		}
	}

	var message conversation.Message
	require.NoError(t, json.Unmarshal(seen[realtime.EventMessageCreated].Payload, &message))
	assert.True(t, message.IsFromUs)
	require.NotNil(t, message.SenderID)
	assert.Equal(t, "op-1", *message.SenderID)

	roomEvent := next(t, watcher, realtime.EventMessageCreated)
	assert.Equal(t, f.chat.ID, roomEvent.ChatID)
}

func TestCommandErrorsStayWithSession(t *testing.T) {
	f := newSocketFixture(t)
	conn := f.dial(t, "op-1")

	tests := []struct {
		name string
		cmd  realtime.Command
		kind string
	}{
		{name: "unknown command", cmd: realtime.Command{Kind: "dance"}, kind: "validation_error"},
		{name: "missing chat", cmd: realtime.Command{Kind: realtime.CommandJoin}, kind: "validation_error"},
		{name: "unknown chat", cmd: realtime.Command{Kind: realtime.CommandJoin, ChatID: uuid.NewString()}, kind: "not_found_error"},
		{name: "empty message", cmd: realtime.Command{Kind: realtime.CommandSendMessage, ChatID: f.chat.ID}, kind: "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.cmd)
			event := next(t, conn, realtime.EventError)
			var payload realtime.ErrorPayload
			require.NoError(t, json.Unmarshal(event.Payload, &payload))
			assert.Equal(t, tt.kind, payload.Type)
			assert.Equal(t, string(tt.cmd.Kind), payload.Command)
		})
	}
}
