package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"

	"go.uber.org/zap"
)

// tokenBytes is the entropy of a minted token before encoding.
const tokenBytes = 32

type authService struct {
	passwordHash [sha256.Size]byte
	tokenTTL     time.Duration
	tokens       ports.TokenRepository
	logger       *zap.SugaredLogger
}

// NewAuthService builds the token registry service around a shared secret.
// The secret is hashed once at construction; submitted passwords are
// hashed and compared in constant time.
func NewAuthService(
	password string,
	tokenTTL time.Duration,
	tokens ports.TokenRepository,
	logger *zap.SugaredLogger,
) ports.AuthService {
	return &authService{
		passwordHash: sha256.Sum256([]byte(password)),
		tokenTTL:     tokenTTL,
		tokens:       tokens,
		logger:       logger,
	}
}

func (s *authService) Authenticate(ctx context.Context, password string) (domain.Token, error) {
	submitted := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(submitted[:], s.passwordHash[:]) != 1 {
		return "", domain.ErrAuthFailed
	}

	token, err := mintToken()
	if err != nil {
		return "", fmt.Errorf("failed to mint token: %w", err)
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	if err := s.tokens.Put(ctx, token, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.Infow("token issued", "expires_at", expiresAt)
	return token, nil
}

func (s *authService) Check(ctx context.Context, token domain.Token) bool {
	if token == "" {
		return false
	}
	ok, err := s.tokens.CheckAndEvict(ctx, token, time.Now())
	if err != nil {
		s.logger.Errorw("token check failed", "error", err)
		return false
	}
	return ok
}

func (s *authService) Revoke(ctx context.Context, token domain.Token) error {
	return s.tokens.Remove(ctx, token)
}

func mintToken() (domain.Token, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return domain.Token(base64.RawURLEncoding.EncodeToString(b)), nil
}
