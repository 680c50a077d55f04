package granola

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// DefaultAuthURL exchanges a desktop-app refresh token for an access token.
	DefaultAuthURL = "https://api.workos.com/user_management/authenticate"

	// ClientID is the desktop app's client identifier.
	ClientID = "client_01HYEM4Y9BSXKCY4Y9QZPFRWWG"
)

// ErrNoToken is returned when no access token can be obtained.
var ErrNoToken = errors.New("no Granola access token found: set GRANOLA_ACCESS_TOKEN or log in to the Granola desktop app")

// Credentials is the subset of the desktop app's credential file we read.
type Credentials struct {
	RefreshToken string `json:"refresh_token"`
	Session      struct {
		RefreshToken string `json:"refresh_token"`
	} `json:"session"`
}

// Refresh returns the top-level refresh token, or the session's.
func (c *Credentials) Refresh() string {
	if c.RefreshToken != "" {
		return c.RefreshToken
	}
	return c.Session.RefreshToken
}

// CredentialPaths lists the candidate credential files for an OS.
func CredentialPaths(goos, home string, getenv func(string) string) []string {
	var dir string
	switch goos {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "Granola")
	case "linux":
		base := getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		dir = filepath.Join(base, "Granola")
	case "windows":
		dir = filepath.Join(getenv("APPDATA"), "Granola")
	default:
		return nil
	}
	return []string{
		filepath.Join(dir, "supabase.json"),
		filepath.Join(dir, "credentials.json"),
	}
}

// DefaultCredentialPaths returns CredentialPaths for the running system.
func DefaultCredentialPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return CredentialPaths(runtime.GOOS, home, os.Getenv)
}

// FindLocalCredentials returns the first candidate file that exists and
// parses. Unreadable files are skipped.
func FindLocalCredentials(paths []string) *Credentials {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var creds Credentials
		if err := json.Unmarshal(data, &creds); err != nil {
			continue
		}
		return &creds
	}
	return nil
}

// Authenticator resolves an access token.
type Authenticator struct {
	AuthURL string
	Paths   []string
	client  *http.Client
}

// NewAuthenticator uses the production refresh endpoint and the platform's
// credential paths.
func NewAuthenticator() *Authenticator {
	return &Authenticator{
		AuthURL: DefaultAuthURL,
		Paths:   DefaultCredentialPaths(),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ResolveToken tries the explicit token, then the environment token, then
// the desktop app's refresh token.
func (a *Authenticator) ResolveToken(ctx context.Context, explicit, fromEnv string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if fromEnv != "" {
		return fromEnv, nil
	}

	creds := FindLocalCredentials(a.Paths)
	if creds == nil || creds.Refresh() == "" {
		return "", ErrNoToken
	}

	token, err := a.refresh(ctx, creds.Refresh())
	if err != nil {
		log.Printf("Warning: could not refresh Granola token: %v", err)
		return "", ErrNoToken
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (a *Authenticator) refresh(ctx context.Context, refreshToken string) (string, error) {
	data, err := json.Marshal(map[string]string{
		"client_id":     ClientID,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := a.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token refresh returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	return result.AccessToken, nil
}
