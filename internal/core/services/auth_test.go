package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven/mocks"
)

func createTestAuthManager(ttl time.Duration) *AuthManager {
	adapter := mocks.NewMockAuthAdapter()
	hash, _ := adapter.HashSecret("letmein")
	return NewAuthManager(AuthManagerConfig{
		Adapter:    adapter,
		SecretHash: hash,
		TokenTTL:   ttl,
	})
}

func TestAuthManager_LoginAndValidate(t *testing.T) {
	a := createTestAuthManager(time.Hour)

	token, err := a.Login(context.Background(), "letmein")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := a.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != operatorSubject {
		t.Errorf("subject = %q, want %q", claims.Subject, operatorSubject)
	}
}

func TestAuthManager_Login_WrongSecret(t *testing.T) {
	a := createTestAuthManager(time.Hour)

	if _, err := a.Login(context.Background(), "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthManager_ValidateToken_Expired(t *testing.T) {
	a := createTestAuthManager(-time.Minute)

	token, err := a.Login(context.Background(), "letmein")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := a.ValidateToken(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestAuthManager_ValidateToken_Garbage(t *testing.T) {
	a := createTestAuthManager(time.Hour)

	if _, err := a.ValidateToken(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}
