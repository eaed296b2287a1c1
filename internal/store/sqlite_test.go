package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/chat-broker/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *SQLiteStore, premium bool, usageCount int) *model.User {
	t.Helper()
	now := time.Now()
	user := &model.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Name:         "Test User",
		Premium:      premium,
		UsageCount:   usageCount,
		LastReset:    now,
		CreatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func newExchange(userID, prompt, reply string) *model.Conversation {
	now := time.Now()
	return &model.Conversation{
		ID:     uuid.Must(uuid.NewV7()).String(),
		UserID: userID,
		Title:  prompt + "...",
		Messages: []model.Message{
			{ID: uuid.Must(uuid.NewV7()).String(), Role: model.RoleUser, Content: prompt, CreatedAt: now},
			{ID: uuid.Must(uuid.NewV7()).String(), Role: model.RoleAssistant, Content: reply, CreatedAt: now},
		},
		CreatedAt: now,
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, false, 0)

	dup := *user
	dup.ID = uuid.NewString()
	err := s.CreateUser(ctx, &dup)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, true, 3)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.True(t, byID.Premium)
	assert.Equal(t, 3, byID.UsageCount)

	byEmail, err := s.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = s.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordExchangeIncrementsCounter(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, false, 0)

	require.NoError(t, s.RecordExchange(ctx, newExchange(user.ID, "Hi", "Hello!"), 20))

	updated, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageCount)

	convs, err := s.ListConversations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "Hi...", convs[0].Title)
	require.Len(t, convs[0].Messages, 2)
	assert.Equal(t, model.RoleUser, convs[0].Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, convs[0].Messages[1].Role)
}

func TestRecordExchangeQuotaGuard(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, false, 20)

	err := s.RecordExchange(ctx, newExchange(user.ID, "one more", "no"), 20)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// Nothing written, counter untouched.
	updated, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.UsageCount)

	convs, err := s.ListConversations(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestRecordExchangePremiumBypassesCap(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, true, 100)

	require.NoError(t, s.RecordExchange(ctx, newExchange(user.ID, "Hi", "Hello!"), 20))

	updated, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 101, updated.UsageCount)
}

func TestRecordExchangeUnknownUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.RecordExchange(context.Background(), newExchange("missing", "Hi", "Hello!"), 20)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordExchangeConcurrentNoOvershoot(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, false, 19)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.RecordExchange(ctx, newExchange(user.ID, fmt.Sprintf("prompt %d", i), "reply"), 20)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrQuotaExceeded)
		}
	}
	assert.Equal(t, 1, succeeded)

	updated, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.UsageCount)
}

func TestListConversationsOrdering(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, false, 0)

	base := time.Now()
	for i := 0; i < 3; i++ {
		conv := newExchange(user.ID, fmt.Sprintf("prompt %d", i), "reply")
		conv.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.RecordExchange(ctx, conv, 20))
	}

	convs, err := s.ListConversations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, convs, 3)
	assert.Equal(t, "prompt 2...", convs[0].Title)
	assert.Equal(t, "prompt 1...", convs[1].Title)
	assert.Equal(t, "prompt 0...", convs[2].Title)

	// Conversations belong to their owner only.
	other := newTestUser(t, s, false, 0)
	convs, err = s.ListConversations(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, convs)
}
