package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
)

// Notifier turns committed store changes into deliveries. Failures are logged
// and dropped so they never affect the write that triggered them.
type Notifier struct {
	broadcaster Broadcaster
	log         zerolog.Logger
}

// NewNotifier wires a notifier over the given broadcaster.
func NewNotifier(broadcaster Broadcaster, log zerolog.Logger) *Notifier {
	return &Notifier{
		broadcaster: broadcaster,
		log:         log.With().Str("component", "realtime-notifier").Logger(),
	}
}

// MessageCreated announces a persisted message and the chat snapshot after it.
// Candidate messages also reach every operator so inbox views update.
func (n *Notifier) MessageCreated(ctx context.Context, chat *conversation.Chat, message *conversation.Message) {
	createdRooms := []string{ChatRoom(chat.ID)}
	if !message.IsFromUs {
		createdRooms = append(createdRooms, OperatorsRoom)
	}
	n.deliver(ctx,
		Delivery{Rooms: createdRooms, Event: NewEvent(EventMessageCreated, chat.ID, message)},
		Delivery{Rooms: []string{ChatRoom(chat.ID), OperatorsRoom}, Event: NewEvent(EventChatUpdated, chat.ID, chat)},
	)
}

// ChatCreated announces a new conversation to all operators.
func (n *Notifier) ChatCreated(ctx context.Context, chat *conversation.Chat) {
	n.deliver(ctx, Delivery{Rooms: []string{OperatorsRoom}, Event: NewEvent(EventChatCreated, chat.ID, chat)})
}

// ChatUpdated announces a metadata change.
func (n *Notifier) ChatUpdated(ctx context.Context, chat *conversation.Chat) {
	n.deliver(ctx, Delivery{Rooms: []string{ChatRoom(chat.ID), OperatorsRoom}, Event: NewEvent(EventChatUpdated, chat.ID, chat)})
}

// MessagesRead announces that an operator cleared the chat's unread state.
func (n *Notifier) MessagesRead(ctx context.Context, result *conversation.ReadResult, operator Operator) {
	chat := result.Chat
	n.deliver(ctx,
		Delivery{Rooms: []string{ChatRoom(chat.ID)}, Event: NewEvent(EventMessagesRead, chat.ID, ReadPayload{
			UnreadCount:    chat.UnreadCount,
			MessagesMarked: result.MessagesMarked,
			Operator:       operator,
		})},
		Delivery{Rooms: []string{OperatorsRoom}, Event: NewEvent(EventChatUpdated, chat.ID, chat)},
	)
}

// Typing echoes a typing indicator to the chat room without the sender.
func (n *Notifier) Typing(ctx context.Context, chatID, sessionID string, operator Operator, stop bool) {
	kind := EventTyping
	if stop {
		kind = EventTypingStop
	}
	n.deliver(ctx, Delivery{
		Rooms:          []string{ChatRoom(chatID)},
		ExcludeSession: sessionID,
		Event:          NewEvent(kind, chatID, TypingPayload{Operator: operator}),
	})
}

// FollowUpDue tells operators a conversation passed its deadline.
func (n *Notifier) FollowUpDue(ctx context.Context, chat *conversation.Chat) {
	n.deliver(ctx, Delivery{Rooms: []string{OperatorsRoom}, Event: NewEvent(EventFollowUpDue, chat.ID, chat)})
}

// ActivityUpdated pushes the operator's refreshed daily counters to their own room.
func (n *Notifier) ActivityUpdated(ctx context.Context, record *activity.DailyActivity) {
	n.deliver(ctx, Delivery{Rooms: []string{OperatorRoom(record.OperatorID)}, Event: NewEvent(EventActivityUpdated, "", record)})
}

func (n *Notifier) deliver(ctx context.Context, deliveries ...Delivery) {
	if n == nil || n.broadcaster == nil {
		return
	}
	for _, d := range deliveries {
		if err := n.broadcaster.Broadcast(ctx, d); err != nil {
			n.log.Warn().Err(err).
				Strs("rooms", d.Rooms).
				Str("event", string(d.Event.Kind)).
				Msg("broadcast dropped")
		}
	}
}
