package auth

import "context"

// AuthVerifier valida un bearer token y devuelve los claims del proveedor.
// Un error significa "sin identidad": el middleware no corta el request.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
