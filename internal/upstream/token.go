package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/structures"
)

// defaultTokenLifetime is assumed when the token endpoint omits
// expires_in.
const defaultTokenLifetime = time.Hour

// PersistFunc is invoked with the replacement credentials after every
// successful refresh, before they are returned to the caller.
type PersistFunc func(accountID string, creds *models.AccountCredentials)

// TokenRefresher exchanges refresh tokens for fresh access tokens. The
// token endpoint is a plain form POST rather than an oauth2.TokenSource
// because the server insists on a redirect_uri parameter, may withhold
// the rotated refresh token, and signals dead grants in the error body.
type TokenRefresher struct {
	client   *http.Client
	tokenURL string
	clientID string
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	persist  PersistFunc
	now      func() time.Time
}

func NewTokenRefresher(conf *structures.APIConfig, logger providers.Logger, metrics providers.MetricsProviderInterface, persist PersistFunc) *TokenRefresher {
	ApplyConfigDefaults(conf)
	return &TokenRefresher{
		client:   &http.Client{Timeout: conf.RequestTimeout},
		tokenURL: conf.TokenURL,
		clientID: conf.ClientID,
		logger:   logger,
		metrics:  metrics,
		persist:  persist,
		now:      time.Now,
	}
}

// Refresh exchanges the account's refresh token for new credentials.
// Without a refresh token it is a no-op and returns the input unchanged.
// On failure the input credentials are left untouched.
func (r *TokenRefresher) Refresh(ctx context.Context, accountID string, creds *models.AccountCredentials) (*models.AccountCredentials, error) {
	if creds == nil || creds.RefreshToken == "" {
		r.logger.Debugf(providers.TypeAuth, "account %s has no refresh token, skipping refresh", accountID)
		return creds, nil
	}

	form := url.Values{
		"client_id":     {r.clientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
		"redirect_uri":  {RedirectURI},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.metrics.IncTokenRefreshes("error")
		if isTimeout(err) {
			r.logger.Errorf(providers.TypeAuth, "token refresh for %s timed out", accountID)
			return nil, ErrTimeout
		}
		r.logger.Errorf(providers.TypeAuth, "token refresh for %s failed: %v", accountID, err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r.metrics.IncTokenRefreshes("error")
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(string(raw)), "invalid_grant") {
			r.metrics.IncTokenRefreshes("invalid_grant")
			r.logger.Errorf(providers.TypeAuth, "refresh token for %s is no longer valid", accountID)
			return nil, ErrInvalidGrant
		}
		r.metrics.IncTokenRefreshes("error")
		r.logger.Errorf(providers.TypeAuth, "token refresh for %s failed with status %d", accountID, resp.StatusCode)
		return nil, &RequestError{Status: resp.StatusCode, Body: string(raw)}
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.AccessToken == "" {
		r.metrics.IncTokenRefreshes("error")
		return nil, ErrMalformedResponse
	}

	lifetime := defaultTokenLifetime
	if payload.ExpiresIn > 0 {
		lifetime = time.Duration(payload.ExpiresIn) * time.Second
	}
	next := &models.AccountCredentials{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		ExpiresAt:    r.now().Add(lifetime),
	}
	if next.RefreshToken == "" {
		// Some refreshes do not rotate the token, keep the old one.
		next.RefreshToken = creds.RefreshToken
	}
	if next.TokenType == "" {
		next.TokenType = "Bearer"
	}

	r.metrics.IncTokenRefreshes("success")
	r.logger.Infof(providers.TypeAuth, "refreshed access token for %s, valid until %s", accountID, next.ExpiresAt.Format(time.RFC3339))
	if r.persist != nil {
		r.persist(accountID, next)
	}
	return next, nil
}
