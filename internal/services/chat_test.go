package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"frodi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedAssistant struct {
	mu      sync.Mutex
	replies []string
	err     error
	threads []string
}

func (a *scriptedAssistant) Ask(ctx context.Context, threadID, message string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.threads = append(a.threads, threadID)
	if a.err != nil {
		return "", a.err
	}
	reply := "svar við " + message
	if len(a.replies) > 0 {
		reply, a.replies = a.replies[0], a.replies[1:]
	}
	return reply, nil
}

func TestChatServiceConversation(t *testing.T) {
	store := NewMemorySessionStore(&countingThreads{}, time.Hour, 10)
	assistant := &scriptedAssistant{replies: []string{"Halló【1:0†reglur.pdf】", "Allt gott"}}
	svc := NewChatService(store, assistant)
	ctx := context.Background()

	first, err := svc.Send(ctx, models.ChatRequest{Message: "Hæ"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, "thread_1", first.ThreadID)
	assert.Equal(t, "Halló【1】\n\nSources:\n1: reglur.pdf", first.Content)
	assert.Equal(t, []models.Turn{
		{Role: models.RoleUser, Content: "Hæ"},
		{Role: models.RoleAssistant, Content: first.Content},
	}, first.History)

	second, err := svc.Send(ctx, models.ChatRequest{Message: "Hvað segirðu?", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "thread_1", second.ThreadID)
	assert.Len(t, second.History, 4)
	assert.Equal(t, []string{"thread_1", "thread_1"}, assistant.threads)
}

func TestChatServiceUnknownSessionStartsFresh(t *testing.T) {
	store := NewMemorySessionStore(&countingThreads{}, time.Hour, 10)
	svc := NewChatService(store, &scriptedAssistant{})

	resp, err := svc.Send(context.Background(), models.ChatRequest{Message: "Hæ", SessionID: "forgotten", ThreadID: "thread_client"})
	require.NoError(t, err)
	assert.Equal(t, "forgotten", resp.SessionID)
	assert.Equal(t, "thread_client", resp.ThreadID)
	assert.Len(t, resp.History, 2)
}

func TestChatServiceEmptyMessage(t *testing.T) {
	svc := NewChatService(NewMemorySessionStore(&countingThreads{}, time.Hour, 10), &scriptedAssistant{})

	_, err := svc.Send(context.Background(), models.ChatRequest{Message: "   "})
	var clientErr *ClientInputError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, ReasonEmptyMessage, clientErr.Reason)
}

func TestChatServiceGatewayFailureKeepsTranscript(t *testing.T) {
	store := NewMemorySessionStore(&countingThreads{}, time.Hour, 10)
	assistant := &scriptedAssistant{}
	svc := NewChatService(store, assistant)
	ctx := context.Background()

	first, err := svc.Send(ctx, models.ChatRequest{Message: "Hæ"})
	require.NoError(t, err)

	assistant.err = &GatewayError{Op: "run assistant", Err: errors.New("failed")}
	_, err = svc.Send(ctx, models.ChatRequest{Message: "Aftur", SessionID: first.SessionID})
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))

	sess, err := store.GetOrCreate(ctx, first.SessionID, "")
	require.NoError(t, err)
	assert.Len(t, sess.Transcript, 2)
}

func TestChatServiceConcurrentSameSession(t *testing.T) {
	store := NewMemorySessionStore(&countingThreads{}, time.Hour, 10)
	threads := &countingThreads{}
	store.threads = threads
	svc := NewChatService(store, &scriptedAssistant{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(ctx, models.ChatRequest{Message: "Hæ", SessionID: "shared"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.GetOrCreate(ctx, "shared", "")
	require.NoError(t, err)
	assert.Len(t, sess.Transcript, 20)
	assert.EqualValues(t, 1, threads.calls)
}

// busyAssistant opens another session while answering, as a concurrent
// request would.
type busyAssistant struct {
	store *MemorySessionStore
}

func (a *busyAssistant) Ask(ctx context.Context, threadID, message string) (string, error) {
	if _, err := a.store.GetOrCreate(ctx, "other", ""); err != nil {
		return "", err
	}
	return "svar", nil
}

func TestChatServiceSessionSurvivesEvictionPressure(t *testing.T) {
	store := NewMemorySessionStore(&countingThreads{}, time.Hour, 1)
	svc := NewChatService(store, &busyAssistant{store: store})

	resp, err := svc.Send(context.Background(), models.ChatRequest{Message: "Hæ", SessionID: "mine"})
	require.NoError(t, err)
	assert.Len(t, resp.History, 2)

	sess, err := store.GetOrCreate(context.Background(), "mine", "")
	require.NoError(t, err)
	assert.Len(t, sess.Transcript, 2)
}
