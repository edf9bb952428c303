package realtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
)

type recordingBroadcaster struct {
	mu         sync.Mutex
	deliveries []realtime.Delivery
	err        error
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, d realtime.Delivery) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = append(b.deliveries, d)
	return b.err
}

func (b *recordingBroadcaster) byKind(kind realtime.EventKind) []realtime.Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []realtime.Delivery
	for _, d := range b.deliveries {
		if d.Event.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func sampleChat() *conversation.Chat {
	now := time.Now().UTC()
	return &conversation.Chat{ID: "chat-1", Status: conversation.StatusActive, LastMessageDate: &now}
}

func TestMessageCreatedRouting(t *testing.T) {
	tests := []struct {
		name     string
		isFromUs bool
		rooms    []string
	}{
		{"operator message stays in the chat room", true, []string{"chat:chat-1"}},
		{"candidate message also reaches operators", false, []string{"chat:chat-1", realtime.OperatorsRoom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &recordingBroadcaster{}
			n := realtime.NewNotifier(b, zerolog.Nop())
			chat := sampleChat()

			n.MessageCreated(context.Background(), chat, &conversation.Message{ID: "m1", ChatID: chat.ID, IsFromUs: tt.isFromUs})

			created := b.byKind(realtime.EventMessageCreated)
			require.Len(t, created, 1)
			assert.Equal(t, tt.rooms, created[0].Rooms)
			assert.Equal(t, "chat-1", created[0].Event.ChatID)

			updated := b.byKind(realtime.EventChatUpdated)
			require.Len(t, updated, 1)
			assert.ElementsMatch(t, []string{"chat:chat-1", realtime.OperatorsRoom}, updated[0].Rooms)
			assert.Same(t, chat, updated[0].Event.Payload)
		})
	}
}

func TestTypingExcludesSender(t *testing.T) {
	b := &recordingBroadcaster{}
	n := realtime.NewNotifier(b, zerolog.Nop())

	n.Typing(context.Background(), "chat-1", "session-7", realtime.Operator{ID: "op-1", Name: "Ada"}, false)
	n.Typing(context.Background(), "chat-1", "session-7", realtime.Operator{ID: "op-1", Name: "Ada"}, true)

	start := b.byKind(realtime.EventTyping)
	require.Len(t, start, 1)
	assert.Equal(t, "session-7", start[0].ExcludeSession)
	assert.Equal(t, realtime.TypingPayload{Operator: realtime.Operator{ID: "op-1", Name: "Ada"}}, start[0].Event.Payload)

	stop := b.byKind(realtime.EventTypingStop)
	require.Len(t, stop, 1)
	assert.Equal(t, "session-7", stop[0].ExcludeSession)
}

func TestActivityUpdatedGoesToOperatorRoom(t *testing.T) {
	b := &recordingBroadcaster{}
	n := realtime.NewNotifier(b, zerolog.Nop())

	n.ActivityUpdated(context.Background(), &activity.DailyActivity{OperatorID: "op-1", TotalMessages: 3})

	events := b.byKind(realtime.EventActivityUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"operator:op-1"}, events[0].Rooms)
}

func TestMessagesReadPayload(t *testing.T) {
	b := &recordingBroadcaster{}
	n := realtime.NewNotifier(b, zerolog.Nop())

	n.MessagesRead(context.Background(), &conversation.ReadResult{Chat: sampleChat(), MessagesMarked: 4}, realtime.Operator{ID: "op-1"})

	events := b.byKind(realtime.EventMessagesRead)
	require.Len(t, events, 1)
	payload, ok := events[0].Event.Payload.(realtime.ReadPayload)
	require.True(t, ok)
	assert.Equal(t, int64(4), payload.MessagesMarked)
	assert.Equal(t, 0, payload.UnreadCount)
}

func TestBroadcastFailuresAreSwallowed(t *testing.T) {
	b := &recordingBroadcaster{err: errors.New("transport down")}
	n := realtime.NewNotifier(b, zerolog.Nop())

	assert.NotPanics(t, func() {
		n.ChatCreated(context.Background(), sampleChat())
		n.FollowUpDue(context.Background(), sampleChat())
	})
	assert.Len(t, b.deliveries, 2)
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *realtime.Notifier
	assert.NotPanics(t, func() {
		n.ChatUpdated(context.Background(), sampleChat())
	})
}

func TestSchemaDescribesEnvelope(t *testing.T) {
	schema := realtime.Schema()
	require.NotNil(t, schema.Event)
	require.NotNil(t, schema.Command)

	_, ok := schema.Event.Properties.Get("type")
	assert.True(t, ok)
	_, ok = schema.Command.Properties.Get("chat_id")
	assert.True(t, ok)
}
