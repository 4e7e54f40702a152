package auth

import "context"

// AuthVerifier verifica un bearer token y devuelve claims o error.
// Implementación: adapters/auth/iam.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
