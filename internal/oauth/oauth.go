// Package oauth implements the authorization-code exchange and profile fetch
// against the supported identity providers.
package oauth

import "context"

// Profile is the normalized identity returned by a provider after a
// successful code exchange.
type Profile struct {
	ExternalID string
	Email      string
	Name       string
	PictureURL string
}

// Client exchanges an authorization code for an access token and fetches the
// user's profile. Implementations fail with an upstream error before any
// local state is written.
type Client interface {
	// Provider returns the provider name used in routes and tokens.
	Provider() string

	// Exchange redeems the authorization code for an access token.
	Exchange(ctx context.Context, code string) (string, error)

	// FetchProfile loads the user's profile with the access token.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
