package models

import "time"

// AccountCredentials is the OAuth token pair for one account. A refresh
// replaces the whole struct, never individual fields, so a reader holding
// a pointer always sees a consistent pair.
type AccountCredentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token has passed its expiry.
// A zero expiry (manually provisioned token) never expires proactively;
// the upstream will answer 401 when it stops accepting it.
func (c *AccountCredentials) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// NeedsRefresh reports whether a refresh should run before the next
// authenticated call.
func (c *AccountCredentials) NeedsRefresh(now time.Time) bool {
	return c.AccessToken == "" || c.Expired(now)
}
