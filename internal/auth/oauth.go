package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// googleUserinfoURL returns the authenticated user's OpenID profile.
const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleUser is the slice of Google's userinfo response we care about.
type GoogleUser struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow. Students log in with their college Google account; the email
// that comes back is the identity everything else keys on.
type GoogleProvider struct {
	config *oauth2.Config

	// hostedDomain restricts logins to one Google Workspace domain
	// (e.g. "wellesley.edu"). Empty allows any Google account — handy in
	// development. Google's "hd" hint is enforced again server-side below,
	// because the hint alone is advisory.
	hostedDomain string
}

// NewGoogleProvider creates a provider with the given OAuth client
// credentials. callbackURL must exactly match an authorized redirect URI
// registered in the Google Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL, hostedDomain string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		hostedDomain: hostedDomain,
	}
}

// AuthURL returns the consent-page URL for the given CSRF state. The state
// is random, stored in a cookie before redirecting, and checked on
// callback.
func (p *GoogleProvider) AuthURL(state string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if p.hostedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.hostedDomain))
	}
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange completes the flow: trades the authorization code for the
// user's Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that injects the
	// Authorization header on every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo: %w", err)
	}

	if gu.Email == "" || !gu.EmailVerified {
		return nil, fmt.Errorf("auth: Google returned no verified email")
	}

	if p.hostedDomain != "" && !strings.HasSuffix(strings.ToLower(gu.Email), "@"+strings.ToLower(p.hostedDomain)) {
		return nil, fmt.Errorf("auth: account %s is outside the %s domain", gu.Email, p.hostedDomain)
	}

	return &gu, nil
}
