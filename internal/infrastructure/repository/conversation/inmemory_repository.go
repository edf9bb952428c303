package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

type candidateKey struct {
	platformID string
	username   string
}

// InMemoryRepository is a thread-safe repository for STORAGE_DRIVER=memory and tests.
// A single mutex makes every mutation atomic with respect to readers.
type InMemoryRepository struct {
	mu          sync.RWMutex
	chats       map[string]*domain.Chat
	byCandidate map[candidateKey]string
	messages    map[string][]*domain.Message
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		chats:       make(map[string]*domain.Chat),
		byCandidate: make(map[candidateKey]string),
		messages:    make(map[string][]*domain.Message),
	}
}

func (r *InMemoryRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := candidateKey{chat.PlatformID, chat.CandidateUsername}
	if _, exists := r.byCandidate[key]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"chat already exists for candidate on platform", nil, "chat-candidate-exists")
	}
	r.insertLocked(chat)
	return nil
}

func (r *InMemoryRepository) FindOrCreateChat(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := candidateKey{chat.PlatformID, chat.CandidateUsername}
	if id, exists := r.byCandidate[key]; exists {
		return r.chats[id].Clone(), false, nil
	}
	r.insertLocked(chat)
	return chat.Clone(), true, nil
}

func (r *InMemoryRepository) insertLocked(chat *domain.Chat) {
	stored := chat.Clone()
	r.chats[stored.ID] = stored
	r.byCandidate[candidateKey{stored.PlatformID, stored.CandidateUsername}] = stored.ID
}

func (r *InMemoryRepository) FindChatByID(ctx context.Context, id string) (*domain.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, chatNotFound(ctx, id)
	}
	return chat.Clone(), nil
}

func (r *InMemoryRepository) FindChatByCandidate(ctx context.Context, platformID, username string) (*domain.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCandidate[candidateKey{platformID, username}]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"chat not found for candidate", nil, "chat-candidate-not-found")
	}
	return r.chats[id].Clone(), nil
}

func (r *InMemoryRepository) ListChats(ctx context.Context, filter domain.Filter, pagination *domain.Pagination) ([]*domain.Chat, int64, error) {
	r.mu.RLock()
	matched := make([]*domain.Chat, 0, len(r.chats))
	for _, chat := range r.chats {
		if filter.Matches(chat) {
			matched = append(matched, chat.Clone())
		}
	}
	r.mu.RUnlock()

	sortInbox(matched)
	total := int64(len(matched))

	if pagination != nil {
		offset := pagination.Offset()
		if offset >= len(matched) {
			return []*domain.Chat{}, total, nil
		}
		end := offset + pagination.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

// sortInbox orders chats by latest activity, chats without messages last.
func sortInbox(chats []*domain.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i], chats[j]
		switch {
		case a.LastMessageDate == nil && b.LastMessageDate != nil:
			return false
		case a.LastMessageDate != nil && b.LastMessageDate == nil:
			return true
		case a.LastMessageDate != nil && !a.LastMessageDate.Equal(*b.LastMessageDate):
			return a.LastMessageDate.After(*b.LastMessageDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (r *InMemoryRepository) AppendMessage(ctx context.Context, chatID string, mutate domain.MessageMutation) (*domain.AppendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.chats[chatID]
	if !ok {
		return nil, chatNotFound(ctx, chatID)
	}

	chat := stored.Clone()
	previous := chat.Clone().FollowUpDate
	message, err := mutate(chat)
	if err != nil {
		return nil, err
	}

	if existing := r.messageByExternalID(chatID, message.ExternalID); existing != nil {
		return &domain.AppendResult{
			Message:              cloneMessage(existing),
			Chat:                 stored.Clone(),
			PreviousFollowUpDate: previous,
			Duplicate:            true,
		}, nil
	}

	r.chats[chatID] = chat
	r.messages[chatID] = append(r.messages[chatID], cloneMessage(message))

	return &domain.AppendResult{
		Message:              cloneMessage(message),
		Chat:                 chat.Clone(),
		PreviousFollowUpDate: previous,
	}, nil
}

func (r *InMemoryRepository) UpdateChat(ctx context.Context, chatID string, mutate domain.ChatMutation) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.chats[chatID]
	if !ok {
		return nil, chatNotFound(ctx, chatID)
	}

	chat := stored.Clone()
	if err := mutate(chat); err != nil {
		return nil, err
	}
	r.chats[chatID] = chat
	return chat.Clone(), nil
}

func (r *InMemoryRepository) MarkRead(ctx context.Context, chatID string) (*domain.ReadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return nil, chatNotFound(ctx, chatID)
	}

	var marked int64
	for _, m := range r.messages[chatID] {
		if !m.IsFromUs && !m.IsRead {
			m.IsRead = true
			marked++
		}
	}
	chat.UnreadCount = 0

	return &domain.ReadResult{Chat: chat.Clone(), MessagesMarked: marked}, nil
}

func (r *InMemoryRepository) ListMessages(ctx context.Context, chatID string, afterSequence int64, limit int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Message, 0)
	for _, m := range r.messages[chatID] {
		if m.Sequence <= afterSequence {
			continue
		}
		out = append(out, cloneMessage(m))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListFollowUpsDue(ctx context.Context, from, to time.Time) ([]*domain.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Chat, 0)
	for _, chat := range r.chats {
		if chat.Status == domain.StatusClosed || chat.FollowUpDate == nil {
			continue
		}
		if chat.FollowUpDate.After(from) && !chat.FollowUpDate.After(to) {
			out = append(out, chat.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FollowUpDate.Before(*out[j].FollowUpDate) })
	return out, nil
}

func (r *InMemoryRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, chat := range r.chats {
		if chat.Status != domain.StatusClosed && chat.FollowUpDate != nil && chat.FollowUpDate.Before(now) {
			count++
		}
	}
	return count, nil
}

func cloneMessage(m *domain.Message) *domain.Message {
	out := *m
	out.Attachments = append([]domain.Attachment{}, m.Attachments...)
	if m.SenderID != nil {
		v := *m.SenderID
		out.SenderID = &v
	}
	if m.ExternalID != nil {
		v := *m.ExternalID
		out.ExternalID = &v
	}
	return &out
}

func chatNotFound(ctx context.Context, id string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"chat not found", nil, "chat-not-found", map[string]any{"chat_id": id})
}

func (r *InMemoryRepository) messageByExternalID(chatID string, externalID *string) *domain.Message {
	if externalID == nil {
		return nil
	}
	for _, m := range r.messages[chatID] {
		if m.ExternalID != nil && *m.ExternalID == *externalID {
			return m
		}
	}
	return nil
}
