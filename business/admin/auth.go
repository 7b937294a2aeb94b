package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfcExperience/pkg/logger"
	"nfcExperience/pkg/utils"
)

const RoleAdmin = "admin"

var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials is the single back office account, configured by env.
type Credentials struct {
	Username     string
	PasswordHash string
}

type authService struct {
	credentials Credentials
	tokenTTL    time.Duration
}

func NewAuthService(credentials Credentials, tokenTTL time.Duration) *authService {
	return &authService{
		credentials: credentials,
		tokenTTL:    tokenTTL,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	if s.credentials.PasswordHash == "" {
		logger.Warn("admin login attempted but no password hash is configured")
		return "", ErrInvalidCredentials
	}

	if username != s.credentials.Username || !utils.CheckPassword(s.credentials.PasswordHash, password) {
		logger.Warn("admin login failed", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(username, RoleAdmin, s.tokenTTL)
	if err != nil {
		logger.Error("failed to generate admin token", "error", err)
		return "", errors.New("failed to generate token")
	}

	return token, nil
}
