package driving

import (
	"context"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

// AuthService authenticates operators of the management API.
type AuthService interface {
	// Login exchanges the operator secret for a bearer token
	Login(ctx context.Context, secret string) (string, error)

	// ValidateToken parses and validates a bearer token
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}
