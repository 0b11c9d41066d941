package strava

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token" //nolint:gosec // not credentials, just endpoint URL
)

func NewOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"activity:read_all"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}

// Credential is the per-session OAuth state for one Strava account. The
// upstream rotates the refresh token on every exchange; the rotated value
// is written back here and used for all subsequent refreshes in this
// process lifetime. One Credential per session, never shared as a global.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// TokenSource refreshes the credential on demand. Refreshes are serialized
// with a mutex: two concurrent refreshes against the same credential can
// invalidate the rotated refresh token upstream.
type TokenSource struct {
	config *oauth2.Config

	mu   sync.Mutex
	cred *Credential
}

func NewTokenSource(config *oauth2.Config, cred *Credential) *TokenSource {
	return &TokenSource{config: config, cred: cred}
}

func (s *TokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := &oauth2.Token{
		AccessToken:  s.cred.AccessToken,
		RefreshToken: s.cred.RefreshToken,
		Expiry:       s.cred.Expiry,
	}
	if current.Valid() {
		return current, nil
	}

	if s.cred.RefreshToken == "" {
		return nil, ErrCredentialInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	newToken, err := s.config.TokenSource(ctx, current).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}

	s.cred.AccessToken = newToken.AccessToken
	s.cred.Expiry = newToken.Expiry
	if newToken.RefreshToken != "" {
		s.cred.RefreshToken = newToken.RefreshToken
	}

	return newToken, nil
}

// Snapshot returns a copy of the current credential state, for callers
// that persist the rotated refresh token externally.
func (s *TokenSource) Snapshot() Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cred
}
