package auth

import (
	"context"
	"time"
)

// TokenBlacklist is the storage contract for revoked token IDs.
type TokenBlacklist interface {
	// Add blacklists the jti until the token's original expiry, after which
	// the entry may be dropped.
	Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error
	// IsBlacklisted checks whether the jti is present in the blacklist.
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
