package ingest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/activity"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/conversation"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/ingest"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
	activityrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/activity"
	conversationrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/conversation"
	directoryrepo "github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/repository/directory"
	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
	"github.com/Chibuzo15/crm-project-sub000/pkg/telemetry"
	"github.com/Chibuzo15/crm-project-sub000/pkg/testhelpers"
)

var now = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
	onTime   []bool
}

func (r *recorder) ObserveIngest(author conversation.AuthorKind, outcome string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) ObserveOnTime(onTime bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTime = append(r.onTime, onTime)
}

type fixture struct {
	gateway       ingest.Gateway
	conversations conversation.Service
	directory     directory.Service
	activity      activity.Service
	broadcaster   *testhelpers.Broadcaster
	recorder      *recorder
	clock         *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, conversationrepo.NewInMemoryRepository())
}

func newFixtureWithRepo(t *testing.T, repo conversation.Repository) *fixture {
	t.Helper()
	log := zerolog.Nop()
	c := &clock{t: now}

	conversations := conversation.NewService(repo, conversation.Options{
		DefaultFollowUpDays: 2,
		Retry:               retry.NoRetryPolicy(),
		Now:                 c.Now,
	}, log)
	dir := directory.NewService(directoryrepo.NewInMemoryRepository(), log)
	activitySvc := activity.NewService(activityrepo.NewInMemoryRepository(), retry.NoRetryPolicy(), log)
	broadcaster := &testhelpers.Broadcaster{}
	rec := &recorder{}

	gateway := ingest.NewGateway(conversations, dir, activitySvc, realtime.NewNotifier(broadcaster, log), ingest.Options{
		Sanitizer: telemetry.NewSanitizer(telemetry.PIILevelHashed, "test"),
		Recorder:  rec,
	}, log)

	return &fixture{
		gateway:       gateway,
		conversations: conversations,
		directory:     dir,
		activity:      activitySvc,
		broadcaster:   broadcaster,
		recorder:      rec,
		clock:         c,
	}
}

func (f *fixture) platformWithAccount(t *testing.T, active bool) (*directory.Platform, *directory.PlatformAccount) {
	t.Helper()
	return testhelpers.SeedAccount(t, f.directory, active)
}

func (f *fixture) chat(t *testing.T) *conversation.Chat {
	t.Helper()
	platform, account := f.platformWithAccount(t, true)
	chat, err := f.conversations.CreateChat(context.Background(), conversation.NewChatParams{
		PlatformID:        platform.ID,
		PlatformAccountID: account.ID,
		CandidateUsername: "jane",
	})
	require.NoError(t, err)
	return chat
}

func operator(id string) ingest.Author {
	return ingest.Author{Kind: conversation.AuthorOperator, OperatorID: id, OperatorName: "Ada"}
}

func candidate() ingest.Author {
	return ingest.Author{Kind: conversation.AuthorCandidate}
}

func (f *fixture) activityFor(t *testing.T, operatorID string) *activity.Summary {
	t.Helper()
	summary, err := f.activity.ListActivity(context.Background(), activity.Filter{OperatorID: &operatorID, From: now, To: now})
	require.NoError(t, err)
	return summary
}

func TestOperatorFirstReplyIsOnTime(t *testing.T) {
	f := newFixture(t)
	chat := f.chat(t)

	result, err := f.gateway.Ingest(context.Background(), ingest.Request{
		Target:  ingest.Target{ChatID: chat.ID},
		Author:  operator("op-1"),
		Content: "Hi Jane, thanks for applying",
	})
	require.NoError(t, err)

	assert.True(t, result.Chat.LastMessageDate.Equal(now))
	assert.True(t, result.Chat.FollowUpDate.Equal(now.AddDate(0, 0, 2)))
	assert.Equal(t, 0, result.Chat.UnreadCount)
	require.NotNil(t, result.OnTime)
	assert.True(t, *result.OnTime)
	require.NotNil(t, result.Message.SenderID)
	assert.Equal(t, "op-1", *result.Message.SenderID)

	summary := f.activityFor(t, "op-1")
	require.Len(t, summary.Records, 1)
	assert.Equal(t, int64(1), summary.Records[0].MessagesOnTime)
	assert.Equal(t, []string{chat.ID}, summary.Records[0].ChatsInteracted)

	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventMessageCreated))
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventActivityUpdated))
	assert.Equal(t, []string{"ok"}, f.recorder.outcomes)
	assert.Equal(t, []bool{true}, f.recorder.onTime)
}

func TestLateOperatorReplyCountsOffTime(t *testing.T) {
	f := newFixture(t)
	chat := f.chat(t)

	f.clock.Set(now.AddDate(0, 0, -3))
	_, err := f.gateway.Ingest(context.Background(), ingest.Request{
		Target:  ingest.Target{ChatID: chat.ID},
		Author:  candidate(),
		Content: "Any news?",
	})
	require.NoError(t, err)

	f.clock.Set(now)
	result, err := f.gateway.Ingest(context.Background(), ingest.Request{
		Target:  ingest.Target{ChatID: chat.ID},
		Author:  operator("op-1"),
		Content: "Sorry for the delay",
	})
	require.NoError(t, err)

	require.NotNil(t, result.OnTime)
	assert.False(t, *result.OnTime)
	assert.True(t, result.Chat.FollowUpDate.Equal(now.AddDate(0, 0, 2)), "deadline moves forward from the late reply")

	summary := f.activityFor(t, "op-1")
	require.Len(t, summary.Records, 1)
	assert.Equal(t, int64(1), summary.Records[0].MessagesOffTime)
	assert.Equal(t, int64(0), summary.Records[0].MessagesOnTime)
}

func TestCandidateMessageSkipsActivity(t *testing.T) {
	f := newFixture(t)
	chat := f.chat(t)

	result, err := f.gateway.Ingest(context.Background(), ingest.Request{
		Target:  ingest.Target{ChatID: chat.ID},
		Author:  candidate(),
		Content: "Hello",
	})
	require.NoError(t, err)

	assert.Nil(t, result.OnTime)
	assert.Equal(t, 1, result.Chat.UnreadCount)
	assert.Equal(t, 0, f.broadcaster.Count(realtime.EventActivityUpdated))
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventMessageCreated))
}

func TestFirstContactCreatesThenReusesChat(t *testing.T) {
	f := newFixture(t)
	platform, account := f.platformWithAccount(t, true)
	target := ingest.Target{PlatformID: platform.ID, CandidateUsername: "jane_dev", CandidateName: "Jane"}

	first, err := f.gateway.Ingest(context.Background(), ingest.Request{Target: target, Author: candidate(), Content: "Hi there"})
	require.NoError(t, err)
	assert.True(t, first.ChatCreated)
	assert.Equal(t, account.ID, first.Chat.PlatformAccountID)
	assert.Equal(t, "Jane", first.Chat.CandidateName)
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventChatCreated))

	second, err := f.gateway.Ingest(context.Background(), ingest.Request{Target: target, Author: candidate(), Content: "Following up"})
	require.NoError(t, err)
	assert.False(t, second.ChatCreated)
	assert.Equal(t, first.Chat.ID, second.Chat.ID)
	assert.Equal(t, 2, second.Chat.UnreadCount)
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventChatCreated))

	_, total, err := f.conversations.ListChats(context.Background(), conversation.Filter{PlatformID: &platform.ID}, conversation.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// appendFailingRepo stores chats but refuses every message.
type appendFailingRepo struct {
	conversation.Repository
}

func (appendFailingRepo) AppendMessage(context.Context, string, conversation.MessageMutation) (*conversation.AppendResult, error) {
	return nil, errors.New("disk full")
}

func TestFirstContactAnnouncesChatWhenAppendFails(t *testing.T) {
	f := newFixtureWithRepo(t, appendFailingRepo{Repository: conversationrepo.NewInMemoryRepository()})
	platform, _ := f.platformWithAccount(t, true)
	target := ingest.Target{PlatformID: platform.ID, CandidateUsername: "jane_dev"}

	_, err := f.gateway.Ingest(context.Background(), ingest.Request{Target: target, Author: candidate(), Content: "Hi there"})
	require.Error(t, err)

	stored, err := f.conversations.FindChatByCandidate(context.Background(), platform.ID, "jane_dev")
	require.NoError(t, err)
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventChatCreated))
	assert.Zero(t, f.broadcaster.Count(realtime.EventMessageCreated))

	// The retry finds the existing chat and must not announce it again.
	_, err = f.gateway.Ingest(context.Background(), ingest.Request{Target: target, Author: candidate(), Content: "Hi there"})
	require.Error(t, err)
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventChatCreated))
	assert.Zero(t, stored.LastSequence)
}

func TestConcurrentFirstContactCreatesOneChat(t *testing.T) {
	f := newFixture(t)
	platform, _ := f.platformWithAccount(t, true)
	target := ingest.Target{PlatformID: platform.ID, CandidateUsername: "racer"}

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gateway.Ingest(context.Background(), ingest.Request{Target: target, Author: candidate(), Content: "hi"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	chats, total, err := f.conversations.ListChats(context.Background(), conversation.Filter{PlatformID: &platform.ID}, conversation.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, n, chats[0].UnreadCount)
	assert.Equal(t, 1, f.broadcaster.Count(realtime.EventChatCreated))
}

func TestFirstContactWithoutActiveAccount(t *testing.T) {
	f := newFixture(t)
	platform, _ := f.platformWithAccount(t, false)

	_, err := f.gateway.Ingest(context.Background(), ingest.Request{
		Target:  ingest.Target{PlatformID: platform.ID, CandidateUsername: "jane"},
		Author:  candidate(),
		Content: "Hello?",
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNoActiveAccount))

	_, total, err := f.conversations.ListChats(context.Background(), conversation.Filter{}, conversation.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, total, "no chat is created")
	assert.Zero(t, f.broadcaster.Total())
	assert.Equal(t, []string{"no_active_account"}, f.recorder.outcomes)
}

func TestFailuresHaveNoSideEffects(t *testing.T) {
	f := newFixture(t)
	chat := f.chat(t)

	tests := []struct {
		name string
		req  ingest.Request
		want platformerrors.ErrorType
	}{
		{
			name: "unknown chat",
			req:  ingest.Request{Target: ingest.Target{ChatID: uuid.NewString()}, Author: operator("op-1"), Content: "hi"},
			want: platformerrors.ErrorTypeNotFound,
		},
		{
			name: "operator without identity",
			req:  ingest.Request{Target: ingest.Target{ChatID: chat.ID}, Author: operator(""), Content: "hi"},
			want: platformerrors.ErrorTypeUnauthorized,
		},
		{
			name: "empty message",
			req:  ingest.Request{Target: ingest.Target{ChatID: chat.ID}, Author: operator("op-1"), Content: ""},
			want: platformerrors.ErrorTypeValidation,
		},
		{
			name: "empty first-contact message",
			req:  ingest.Request{Target: ingest.Target{PlatformID: chat.PlatformID, CandidateUsername: "someone-new"}, Author: candidate()},
			want: platformerrors.ErrorTypeValidation,
		},
		{
			name: "no target",
			req:  ingest.Request{Author: candidate(), Content: "hi"},
			want: platformerrors.ErrorTypeValidation,
		},
		{
			name: "unknown author",
			req:  ingest.Request{Target: ingest.Target{ChatID: chat.ID}, Author: ingest.Author{Kind: "system"}, Content: "hi"},
			want: platformerrors.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.gateway.Ingest(context.Background(), tt.req)
			assert.True(t, platformerrors.IsErrorType(err, tt.want), "got %v", err)
		})
	}

	assert.Zero(t, f.broadcaster.Total())
	assert.Empty(t, f.activityFor(t, "op-1").Records)

	stored, err := f.conversations.GetChat(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.LastSequence)

	_, total, err := f.conversations.ListChats(context.Background(), conversation.Filter{}, conversation.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestConcurrentOperatorMessagesAggregateIntoOneRecord(t *testing.T) {
	f := newFixture(t)
	chat := f.chat(t)

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gateway.Ingest(context.Background(), ingest.Request{
				Target:  ingest.Target{ChatID: chat.ID},
				Author:  operator("op-1"),
				Content: "update",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	summary := f.activityFor(t, "op-1")
	require.Len(t, summary.Records, 1)
	record := summary.Records[0]
	assert.Equal(t, int64(n), record.TotalMessages)
	assert.Equal(t, record.TotalMessages, record.MessagesOnTime+record.MessagesOffTime)
	assert.Equal(t, n, f.broadcaster.Count(realtime.EventMessageCreated))
}

func TestSideEffectsSurviveCallerCancellation(t *testing.T) {
	f := newFixture(t)
	chat := f.chat(t)

	ctx, cancel := context.WithCancel(context.Background())
	result, err := f.gateway.Ingest(ctx, ingest.Request{
		Target:  ingest.Target{ChatID: chat.ID},
		Author:  operator("op-1"),
		Content: "hello",
	})
	cancel()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, f.activityFor(t, "op-1").Records, 1)
}

func TestRedeliveredExternalIDIsIgnored(t *testing.T) {
	f := newFixture(t)
	platform, _ := f.platformWithAccount(t, true)
	req := ingest.Request{
		Target:     ingest.Target{PlatformID: platform.ID, CandidateUsername: "jane_dev"},
		Author:     candidate(),
		Content:    "Hi there",
		ExternalID: "upwork-msg-42",
	}

	first, err := f.gateway.Ingest(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Duplicate)
	deliveries := f.broadcaster.Total()

	f.clock.Set(now.Add(time.Hour))
	again, err := f.gateway.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.False(t, again.ChatCreated)
	assert.Equal(t, first.Message.ID, again.Message.ID)
	assert.Equal(t, first.Chat.FollowUpDate, again.Chat.FollowUpDate)
	assert.Equal(t, 1, again.Chat.UnreadCount)
	assert.Equal(t, deliveries, f.broadcaster.Total())

	messages, err := f.conversations.ListMessages(context.Background(), first.Chat.ID, 0, 50)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	req.ExternalID = "upwork-msg-43"
	next, err := f.gateway.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, next.Duplicate)
	assert.Equal(t, int64(2), next.Message.Sequence)
}
