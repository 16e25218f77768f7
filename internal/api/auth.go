package api

import (
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/ahakola/kbcenter-go/internal/credfile"
)

// TokenSourceFromPath loads stored credentials and returns a TokenSource
// for the backend API, plus the cached user profile. Returns ErrNotLoggedIn
// when no credentials file exists.
func TokenSourceFromPath(path string, logger *slog.Logger) (TokenSource, credfile.Profile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tok, profile, err := credfile.Load(path)
	if err != nil {
		return nil, credfile.Profile{}, err
	}

	if tok == nil {
		return nil, credfile.Profile{}, ErrNotLoggedIn
	}

	logger.Debug("loaded stored credentials",
		slog.String("path", path),
		slog.String("user_id", profile.UserID),
	)

	return &tokenBridge{src: oauth2.StaticTokenSource(tok)}, profile, nil
}

// StaticTokenSource wraps a raw access token, for login bootstrap before
// any credentials file exists.
func StaticTokenSource(accessToken string) TokenSource {
	return &tokenBridge{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})}
}

// tokenBridge adapts oauth2.TokenSource to api.TokenSource.
type tokenBridge struct {
	src oauth2.TokenSource
}

func (b *tokenBridge) Token() (string, error) {
	tok, err := b.src.Token()
	if err != nil {
		return "", fmt.Errorf("api: obtaining token: %w", err)
	}

	return tok.AccessToken, nil
}
