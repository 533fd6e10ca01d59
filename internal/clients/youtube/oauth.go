package youtube

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// OAuthConfig is the Google consent flow for editing the channel's videos.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{youtube.YoutubeForceSslScope},
		Endpoint:     google.Endpoint,
	}
}

// AuthURL returns the consent URL. Offline access with forced approval makes
// Google return a refresh token every time.
func AuthURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SavingTokenSource reports refreshed tokens to save so a rotated access
// token survives restarts.
type SavingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	last string
	save func(context.Context, *oauth2.Token) error
	ctx  context.Context
}

func NewSavingTokenSource(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, save func(context.Context, *oauth2.Token) error) *SavingTokenSource {
	return &SavingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		last: tok.AccessToken,
		save: save,
		ctx:  ctx,
	}
}

func (s *SavingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.save(s.ctx, tok); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
	}
	return tok, nil
}
