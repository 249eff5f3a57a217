package upstream

import (
	"time"

	"drinkaware/internal/structures"
)

// Defaults for the hosted Drinkaware service. All of them can be
// overridden through the api config section, which the test simulator
// relies on.
const (
	DefaultBaseURL          = "https://api.drinkaware.co.uk"
	DefaultAuthorizationURL = "https://login.drinkaware.co.uk/login.drinkaware.co.uk/B2C_1A_JITMigraion_signup_signin/oauth2/v2.0/authorize"
	DefaultTokenURL         = "https://login.drinkaware.co.uk/login.drinkaware.co.uk/B2C_1A_JITMigraion_signup_signin/oauth2/v2.0/token"
	DefaultClientID         = "fe14e7b9-d4e1-4967-8fce-617c6f48a055"

	// RedirectURI is the mobile app's custom-scheme callback. Nothing
	// ever listens on it here, but the authorization server requires
	// the parameter to match the registered client on both the
	// authorize and token requests.
	RedirectURI = "uk.co.drinkaware.drinkaware://oauth/callback"

	UserAgent = "DrinkawareSyncDaemon/1.0"
)

// API endpoint paths, relative to the base URL.
const (
	EndpointSelfAssessment = "/tools/v1/selfassessment"
	EndpointStats          = "/tracking/v1/stats"
	EndpointGoals          = "/tracking/v1/goals"
	EndpointSummary        = "/tracking/v1/summary"
	EndpointActivity       = "/tracking/v1/activity"
	EndpointDrinksGeneric  = "/drinks/v1/generic"
	EndpointDrinksSearch   = "/drinks/v1/search"
	EndpointDrinksCustom   = "/drinks/v1/custom"
)

// ApplyConfigDefaults fills the unset API config fields with the hosted
// service defaults. Idempotent, called by every constructor that takes
// the config.
func ApplyConfigDefaults(conf *structures.APIConfig) {
	if conf.BaseURL == "" {
		conf.BaseURL = DefaultBaseURL
	}
	if conf.AuthorizationURL == "" {
		conf.AuthorizationURL = DefaultAuthorizationURL
	}
	if conf.TokenURL == "" {
		conf.TokenURL = DefaultTokenURL
	}
	if conf.ClientID == "" {
		conf.ClientID = DefaultClientID
	}
	if conf.RequestTimeout <= 0 {
		conf.RequestTimeout = 30 * time.Second
	}
	if conf.ThrottleDelay <= 0 {
		conf.ThrottleDelay = time.Second
	}
}

// Scopes requested during the authorization flow. The tracking scopes
// gate the data endpoints, offline_access is what yields a refresh token.
var Scopes = []string{
	"openid",
	"profile",
	"offline_access",
	"https://login.drinkaware.co.uk/drinkaware.api/tracking.user.read",
	"https://login.drinkaware.co.uk/drinkaware.api/tracking.user.write",
}
