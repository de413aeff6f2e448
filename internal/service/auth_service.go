package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

// AuthService exchanges portal credentials for access tokens.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		logger:   logger,
	}
}

// Login authenticates a portal user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, nil, err
		}
		_ = auth.ComparePassword("", password)
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", user.ID))
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, nil, apperrors.NewUnauthorized("account inactive")
	}

	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
