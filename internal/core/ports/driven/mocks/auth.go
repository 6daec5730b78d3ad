package mocks

import (
	"encoding/json"
	"strings"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// MockAuthAdapter is a fake AuthAdapter for testing.
// Hashing is reversible and tokens are plain JSON; only the contract
// matters here, not the cryptography.
type MockAuthAdapter struct {
	// GenerateErr is returned by GenerateToken when set
	GenerateErr error
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

func (m *MockAuthAdapter) HashSecret(secret string) (string, error) {
	return "hashed:" + secret, nil
}

func (m *MockAuthAdapter) VerifySecret(secret, hash string) bool {
	return hash == "hashed:"+secret
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return "token:" + string(data), nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	payload, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	var claims domain.TokenClaims
	if err := json.Unmarshal([]byte(payload), &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	return &claims, nil
}
