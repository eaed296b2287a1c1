package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/chat-broker/internal/apperr"
	"github.com/parley-ai/chat-broker/internal/auth"
	"github.com/parley-ai/chat-broker/internal/model"
	"github.com/parley-ai/chat-broker/internal/store"
	"github.com/parley-ai/chat-broker/pkg/logger"
)

// fakeUserStore wraps fakeChatStore with an email uniqueness guard.
type fakeUserStore struct {
	*fakeChatStore
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrEmailTaken
		}
	}
	f.users[user.ID] = user
	return nil
}

func newAuthService(t *testing.T) (*AuthService, *fakeUserStore, *auth.Issuer) {
	t.Helper()
	st := &fakeUserStore{fakeChatStore: newFakeChatStore()}
	issuer := auth.NewIssuer("test-secret", 0)
	return NewAuthService(st, issuer, logger.NewNop()), st, issuer
}

func TestRegisterSuccess(t *testing.T) {
	t.Parallel()
	svc, st, issuer := newAuthService(t)

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
		Name:     "Alice",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)

	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.False(t, resp.User.Premium)
	assert.Zero(t, resp.User.UsageCount)
	assert.False(t, resp.User.LastReset.IsZero())

	// The plaintext is never stored, only a verifiable hash.
	stored := st.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "hunter22"))

	// The issued token resolves back to the new user.
	userID, err := issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthService(t)

	tests := []struct {
		name string
		req  model.RegisterRequest
	}{
		{"missing email", model.RegisterRequest{Password: "x"}},
		{"invalid email", model.RegisterRequest{Email: "not-an-email", Password: "x"}},
		{"missing password", model.RegisterRequest{Email: "a@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthService(t)

	req := &model.RegisterRequest{Email: "alice@example.com", Password: "pw"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	svc, _, issuer := newAuthService(t)

	reg, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	userID, err := issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	t.Parallel()
	svc, _, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	_, wrongPwErr := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongPwErr)

	// Same kind, same message: no leak of which check failed.
	assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(unknownErr))
	assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(wrongPwErr))
	assert.Equal(t, unknownErr.Error(), wrongPwErr.Error())
	assert.Equal(t, apperr.MessageOf(unknownErr), apperr.MessageOf(wrongPwErr))
}
