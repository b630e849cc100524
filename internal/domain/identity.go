package domain

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
// Token issuance belongs to the platform's auth service; this subsystem only
// verifies.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
