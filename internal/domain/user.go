package domain

import "time"

// Roles a user can hold. Role is recomputed from the admin allow-list on
// every login, never stored as a sticky override.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// OAuth providers supported for sign-in.
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
)

// User is a registered account resolved from an external OAuth profile.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	GoogleID    string    `json:"-"`
	KakaoID     string    `json:"-"`
	Name        string    `json:"name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// ExternalID returns the stored external identifier for the given provider.
func (u *User) ExternalID(provider string) string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderKakao:
		return u.KakaoID
	default:
		return ""
	}
}

// SetExternalID records the external identifier for the given provider.
func (u *User) SetExternalID(provider, id string) {
	switch provider {
	case ProviderGoogle:
		u.GoogleID = id
	case ProviderKakao:
		u.KakaoID = id
	}
}

// UsageStats tracks per-user product usage. Created zeroed exactly once at
// first login.
type UsageStats struct {
	UserID       string    `json:"user_id"`
	ChatMessages int       `json:"chat_messages"`
	BriefsRead   int       `json:"briefs_read"`
	UpdatedAt    time.Time `json:"updated_at"`
}
