package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httpclient"
)

const (
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleClient talks to Google's OAuth2 endpoints.
type GoogleClient struct {
	client       *httpclient.BreakerClient
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	userInfoURL  string
}

// NewGoogleClient creates a Google OAuth client. The redirect URI must match
// the one registered in the Google console.
func NewGoogleClient(client *httpclient.BreakerClient, clientID, clientSecret, redirectURI string) *GoogleClient {
	return &GoogleClient{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
	}
}

// WithEndpoints overrides the provider URLs. Tests point them at a local
// server.
func (c *GoogleClient) WithEndpoints(tokenURL, userInfoURL string) *GoogleClient {
	c.tokenURL = tokenURL
	c.userInfoURL = userInfoURL
	return c
}

func (c *GoogleClient) Provider() string { return domain.ProviderGoogle }

func (c *GoogleClient) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURI},
	}

	resp, err := c.client.Post(ctx, c.tokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Upstream("google", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperrors.Upstream("google", fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperrors.Upstream("google", fmt.Errorf("decode token response: %w", err))
	}
	if payload.AccessToken == "" {
		return "", apperrors.Upstream("google", fmt.Errorf("token response missing access_token"))
	}
	return payload.AccessToken, nil
}

func (c *GoogleClient) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("google", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream("google", fmt.Errorf("userinfo returned %d", resp.StatusCode))
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Upstream("google", fmt.Errorf("decode userinfo: %w", err))
	}
	if payload.ID == "" || payload.Email == "" {
		return nil, apperrors.Upstream("google", fmt.Errorf("userinfo missing id or email"))
	}

	return &Profile{
		ExternalID: payload.ID,
		Email:      payload.Email,
		Name:       payload.Name,
		PictureURL: payload.Picture,
	}, nil
}
