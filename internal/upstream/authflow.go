package upstream

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"drinkaware/internal/models"
	"drinkaware/internal/structures"
)

// Patterns for pulling an authorization code out of whatever the user
// pastes back: a full redirect URL, the bare custom-scheme URI, or a
// "code: xyz" fragment.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]code=([^&\s]+)`),
	regexp.MustCompile(`uk\.co\.drinkaware\.drinkaware://oauth/callback[^ ]*?code=([^&\s]+)`),
	regexp.MustCompile(`code[=:]\s*([A-Za-z0-9._\-]+)`),
}

// AuthFlow drives the interactive authorization-code flow with PKCE.
// It is only used by the one-shot authorize mode, never by the daemon
// loop.
type AuthFlow struct {
	oauth  *oauth2.Config
	client *http.Client
	apiURL string
	now    func() time.Time
}

func NewAuthFlow(conf *structures.APIConfig) *AuthFlow {
	ApplyConfigDefaults(conf)
	return &AuthFlow{
		oauth: &oauth2.Config{
			ClientID:    conf.ClientID,
			RedirectURL: RedirectURI,
			Scopes:      Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  conf.AuthorizationURL,
				TokenURL: conf.TokenURL,
			},
		},
		client: &http.Client{Timeout: conf.RequestTimeout},
		apiURL: strings.TrimRight(conf.BaseURL, "/"),
		now:    time.Now,
	}
}

// NewVerifier returns a fresh PKCE code verifier.
func (f *AuthFlow) NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthorizationURL builds the browser URL carrying the S256 challenge
// for the given verifier.
func (f *AuthFlow) AuthorizationURL(state, verifier string) string {
	return f.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the authorization code plus verifier for credentials.
func (f *AuthFlow) Exchange(ctx context.Context, code, verifier string) (*models.AccountCredentials, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	tok, err := f.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	creds := &models.AccountCredentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
	}
	if creds.TokenType == "" {
		creds.TokenType = "Bearer"
	}
	return creds, nil
}

// Test verifies a token actually works by hitting the stats endpoint.
func (f *AuthFlow) Test(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.apiURL+EndpointStats, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Status: resp.StatusCode, Body: "connection test failed"}
	}
	return nil
}

// ExtractCode pulls the authorization code out of pasted redirect text.
func ExtractCode(text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, p := range codePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// TokenClaims are the identity claims we pull out of an access token to
// label the account.
type TokenClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

// ParseTokenClaims decodes the payload of a JWT without verifying it.
// The claims are only used to suggest an account id and email, every
// authorization decision stays with the server.
func ParseTokenClaims(token string) (TokenClaims, error) {
	var claims TokenClaims
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims, fmt.Errorf("token is not a JWT")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, fmt.Errorf("decode token payload: %w", err)
	}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return claims, fmt.Errorf("parse token payload: %w", err)
	}
	return claims, nil
}
