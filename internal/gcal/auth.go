package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"

	"gcal2org/internal/log"
)

// AuthError indicates that valid API credentials could not be obtained.
// It is always fatal for the run.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "auth: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// Authorize builds an authenticated HTTP client from the OAuth client secret
// at credPath. A token cached at tokenPath is reused; otherwise the
// interactive installed-app flow runs once and the token is persisted for
// subsequent unattended runs. Expired tokens with a refresh token are
// refreshed transparently by the returned client.
func Authorize(ctx context.Context, credPath, tokenPath string) (*http.Client, error) {
	secret, err := os.ReadFile(credPath)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("read client secret %s: %w", credPath, err)}
	}

	conf, err := google.ConfigFromJSON(secret, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("parse client secret %s: %w", credPath, err)}
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		if tok, err = tokenFromWeb(ctx, conf); err != nil {
			return nil, &AuthError{Err: err}
		}
		if err := saveToken(tokenPath, tok); err != nil {
			// A lost token only costs a re-prompt next run.
			log.Error("failed to cache oauth token", err, "path", tokenPath)
		}
	}

	return conf.Client(ctx, tok), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return tok, nil
}

// tokenFromWeb runs the interactive authorization step: the user opens the
// printed URL, grants access and pastes the code back on stdin.
func tokenFromWeb(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(os.Stderr, "Open the following link in your browser, then paste the authorization code:\n%v\n", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
