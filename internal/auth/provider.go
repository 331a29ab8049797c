package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-scanner/internal/users"
)

var (
	ErrNotConfigured = errors.New("oauth provider not configured")
	ErrExchange      = errors.New("failed to exchange authorization code")
	ErrProfile       = errors.New("failed to fetch user profile")
	ErrNoEmail       = errors.New("provider profile has no email")
)

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	linkedInUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

var linkedInEndpoint = oauth2.Endpoint{
	AuthURL:   "https://www.linkedin.com/oauth/v2/authorization",
	TokenURL:  "https://www.linkedin.com/oauth/v2/accessToken",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Provider is an OAuth2 identity provider with an OIDC-style userinfo endpoint.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
	// HTTPClient, when set, is used for token exchange and userinfo calls.
	HTTPClient *http.Client
}

// NewGoogleProvider builds the Google provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

// NewLinkedInProvider builds the LinkedIn provider.
func NewLinkedInProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "linkedin",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     linkedInEndpoint,
		},
		UserInfoURL: linkedInUserInfoURL,
	}
}

// Configured reports whether real client credentials are present.
func (p *Provider) Configured() bool {
	if p == nil || p.Config == nil {
		return false
	}
	return realCredential(p.Config.ClientID) && realCredential(p.Config.ClientSecret)
}

func realCredential(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.HasPrefix(strings.ToLower(v), "your-")
}

// AuthCodeURL returns the consent URL for state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

type userInfo struct {
	Sub        string `json:"sub"`
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// Exchange trades an authorization code for the user's profile. A non-empty
// redirectURI overrides the configured one.
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (users.OAuthProfile, error) {
	if !p.Configured() {
		return users.OAuthProfile{}, ErrNotConfigured
	}
	cfg := *p.Config
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	if p.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return users.OAuthProfile{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}

	info, err := p.fetchUserInfo(ctx, cfg.Client(ctx, tok))
	if err != nil {
		return users.OAuthProfile{}, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	if strings.TrimSpace(info.Email) == "" {
		return users.OAuthProfile{}, ErrNoEmail
	}

	first, last := info.GivenName, info.FamilyName
	if first == "" && last == "" && info.Name != "" {
		parts := strings.SplitN(strings.TrimSpace(info.Name), " ", 2)
		first = parts[0]
		if len(parts) > 1 {
			last = parts[1]
		}
	}
	return users.OAuthProfile{
		Email:     info.Email,
		FirstName: first,
		LastName:  last,
		Picture:   info.Picture,
	}, nil
}

func (p *Provider) fetchUserInfo(ctx context.Context, client *http.Client) (userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return userInfo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return userInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return userInfo{}, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, err
	}
	// Google v2 uses "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}
