// Package service provides business logic for the chat broker.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parley-ai/chat-broker/internal/apperr"
	"github.com/parley-ai/chat-broker/internal/auth"
	"github.com/parley-ai/chat-broker/internal/model"
	"github.com/parley-ai/chat-broker/internal/store"
	"github.com/parley-ai/chat-broker/pkg/logger"
	"github.com/parley-ai/chat-broker/pkg/metrics"
)

// invalidCredentials is the single message returned for both unknown email
// and wrong password, so a caller cannot tell which one failed.
var invalidCredentials = apperr.E(apperr.KindInvalidCredentials, "invalid login credentials")

// AuthService handles registration and login.
type AuthService struct {
	store  store.Store
	issuer *auth.Issuer
	logger *logger.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(s store.Store, issuer *auth.Issuer, log *logger.Logger) *AuthService {
	return &AuthService{
		store:  s,
		issuer: issuer,
		logger: log,
	}
}

// Register creates an account and returns the created user with an issued
// token. The plaintext password is hashed before storage and never persisted
// or returned.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.E(apperr.KindInvalidRequest, "a valid email is required")
	}
	if req.Password == "" {
		return nil, apperr.E(apperr.KindInvalidRequest, "password is required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Premium:      false,
		UsageCount:   0,
		LastReset:    now,
		CreatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, apperr.E(apperr.KindInvalidRequest, "email already registered")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	metrics.UsersRegisteredTotal.Inc()

	return &model.AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with an issued token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidCredentials
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, invalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{User: user, Token: token}, nil
}
