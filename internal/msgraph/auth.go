// Package msgraph imports Outlook calendar events through Microsoft Graph as
// closed time logs.
package msgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/track/internal/config"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// DefaultTokenPath returns ~/.track/auth/msgraph_tokens.json.
func DefaultTokenPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth", "msgraph_tokens.json"), nil
}

// Auth obtains Graph tokens with the OAuth2 device code flow and caches them
// in a token file.
type Auth struct {
	oauth     *oauth2.Config
	tokenPath string
	// out receives the sign-in instructions.
	out    io.Writer
	logger *slog.Logger
}

// NewAuth returns an Auth for the given tenant and app registration.
func NewAuth(tenantID, clientID, tokenPath string, out io.Writer, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Auth{
		oauth: &oauth2.Config{
			ClientID: clientID,
			Scopes:   requiredScopes,
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
				TokenURL:      msEndpoint(tenantID, "token"),
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		tokenPath: tokenPath,
		out:       out,
		logger:    logger,
	}
}

// loadToken returns nil without error when no token has been saved yet.
func (a *Auth) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", a.tokenPath, err)
	}
	return &tok, nil
}

func (a *Auth) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := a.tokenPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, a.tokenPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Token returns a usable token: the cached one if still valid, a refreshed
// one, or a new one from the device code flow.
func (a *Auth) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := a.loadToken()
	if err != nil {
		a.logger.Warn("ignoring cached token", "err", err)
		tok = nil
	}
	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := a.oauth.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := a.saveToken(refreshed); err != nil {
				a.logger.Warn("could not save refreshed token", "err", err)
			}
			return refreshed, nil
		}
		a.logger.Info("token refresh failed, re-authenticating", "err", err)
	}

	resp, err := a.oauth.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(a.out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(a.out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(a.out)

	newTok, err := a.oauth.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := a.saveToken(newTok); err != nil {
		a.logger.Warn("could not save token", "err", err)
	}
	return newTok, nil
}

// TokenSource wraps tok so that every refreshed token is written back to the
// token file.
func (a *Auth) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return &savingTokenSource{ts: a.oauth.TokenSource(ctx, tok), auth: a}
}

type savingTokenSource struct {
	ts   oauth2.TokenSource
	auth *Auth
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if err := s.auth.saveToken(tok); err != nil {
		s.auth.logger.Debug("could not save token", "err", err)
	}
	return tok, nil
}
