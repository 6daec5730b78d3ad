package driven

import "github.com/folio-labs/bindery-core/internal/core/domain"

// AuthAdapter handles authentication cryptographic operations for the
// operator API: the shared secret hash and the bearer tokens issued from it.
type AuthAdapter interface {
	// Secret operations
	HashSecret(secret string) (string, error)
	VerifySecret(secret, hash string) bool

	// Token operations
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
