package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// SSOIdentity is the subset of the identity provider's userinfo response the
// login flow needs to map onto a profile.
type SSOIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SSOClient drives the authorization-code flow against the campus single
// sign-on provider.
type SSOClient struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewSSOClient(clientID, clientSecret, authURL, tokenURL, userInfoURL, redirectURL string) *SSOClient {
	return &SSOClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		userInfoURL: userInfoURL,
	}
}

// AuthCodeURL builds the provider redirect for the given anti-forgery state.
func (c *SSOClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the caller's identity.
func (c *SSOClient) Exchange(ctx context.Context, code string) (*SSOIdentity, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := c.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var identity SSOIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	if identity.Email == "" {
		return nil, fmt.Errorf("identity provider returned no email")
	}

	return &identity, nil
}
