package auth

import "context"

// SetAdminIDForTest injects an admin ID into the context for testing purposes.
func SetAdminIDForTest(ctx context.Context, adminID int64) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}
