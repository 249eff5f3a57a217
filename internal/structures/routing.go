package structures

import "net/http"

type Route struct {
	Url     string
	Handler http.Handler
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
	// Authorize runs the one-shot PKCE setup flow instead of the daemon.
	Authorize bool
}
