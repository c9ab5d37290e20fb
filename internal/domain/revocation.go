package domain

import (
	"fmt"
	"time"
)

// Reasons a session token can be revoked before its natural expiry.
const (
	RevokeReasonLogout         = "logout"
	RevokeReasonAccountDeleted = "account_deleted"
)

// RevokedToken is a denylist entry for a signature-valid session token.
// ExpiresAt mirrors the token's own expiry, so an entry is worthless once
// that moment passes and the denylist prunes itself.
type RevokedToken struct {
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
}

// TokenID derives the denylist key for a session token from its subject and
// issue time.
func TokenID(userID string, issuedAt time.Time) string {
	return fmt.Sprintf("%s:%d", userID, issuedAt.Unix())
}
