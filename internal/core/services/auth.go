package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
	"github.com/folio-labs/bindery-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.AuthService = (*AuthManager)(nil)

const operatorSubject = "operator"

// AuthManager authenticates operators against a single shared secret and
// issues short-lived bearer tokens for the management API.
type AuthManager struct {
	adapter    driven.AuthAdapter
	secretHash string
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// AuthManagerConfig holds configuration for AuthManager.
type AuthManagerConfig struct {
	Adapter driven.AuthAdapter

	// SecretHash is the bcrypt hash of the operator secret
	SecretHash string

	// TokenTTL is how long issued tokens stay valid (default 12h)
	TokenTTL time.Duration

	Logger *slog.Logger
}

// NewAuthManager creates a new AuthManager.
func NewAuthManager(cfg AuthManagerConfig) *AuthManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &AuthManager{
		adapter:    cfg.Adapter,
		secretHash: cfg.SecretHash,
		tokenTTL:   ttl,
		logger:     logger,
	}
}

// Login exchanges the operator secret for a bearer token.
func (a *AuthManager) Login(ctx context.Context, secret string) (string, error) {
	if !a.adapter.VerifySecret(secret, a.secretHash) {
		a.logger.Warn("operator login rejected")
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	token, err := a.adapter.GenerateToken(&domain.TokenClaims{
		Subject:   operatorSubject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(a.tokenTTL).Unix(),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ValidateToken parses and validates a bearer token.
func (a *AuthManager) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := a.adapter.ParseToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if time.Now().Unix() >= claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}
