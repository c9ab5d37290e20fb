package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
	"github.com/ynl8015/LinguaLetter-sub000/pkg/httpclient"
)

const (
	kakaoTokenURL    = "https://kauth.kakao.com/oauth/token"
	kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"
)

// KakaoClient talks to Kakao's OAuth2 endpoints.
type KakaoClient struct {
	client       *httpclient.BreakerClient
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	userInfoURL  string
}

func NewKakaoClient(client *httpclient.BreakerClient, clientID, clientSecret, redirectURI string) *KakaoClient {
	return &KakaoClient{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     kakaoTokenURL,
		userInfoURL:  kakaoUserInfoURL,
	}
}

// WithEndpoints overrides the provider URLs. Tests point them at a local
// server.
func (c *KakaoClient) WithEndpoints(tokenURL, userInfoURL string) *KakaoClient {
	c.tokenURL = tokenURL
	c.userInfoURL = userInfoURL
	return c
}

func (c *KakaoClient) Provider() string { return domain.ProviderKakao }

func (c *KakaoClient) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"client_id":    {c.clientID},
		"redirect_uri": {c.redirectURI},
	}
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}

	resp, err := c.client.Post(ctx, c.tokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Upstream("kakao", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperrors.Upstream("kakao", fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperrors.Upstream("kakao", fmt.Errorf("decode token response: %w", err))
	}
	if payload.AccessToken == "" {
		return "", apperrors.Upstream("kakao", fmt.Errorf("token response missing access_token"))
	}
	return payload.AccessToken, nil
}

func (c *KakaoClient) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("kakao", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream("kakao", fmt.Errorf("userinfo returned %d", resp.StatusCode))
	}

	// Kakao nests the profile and uses a numeric account ID.
	var payload struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Upstream("kakao", fmt.Errorf("decode userinfo: %w", err))
	}
	if payload.ID == 0 || payload.KakaoAccount.Email == "" {
		return nil, apperrors.Upstream("kakao", fmt.Errorf("userinfo missing id or email"))
	}

	return &Profile{
		ExternalID: strconv.FormatInt(payload.ID, 10),
		Email:      payload.KakaoAccount.Email,
		Name:       payload.KakaoAccount.Profile.Nickname,
		PictureURL: payload.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
