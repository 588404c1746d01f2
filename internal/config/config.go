// Package config exposes the runtime configuration of the relying party,
// sourced from environment variables with sensible development defaults.
package config

import "time"

type Config interface {
	EnvConfig
	OIDCConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	// GetFrontendURL is the base URL the browser is redirected to after the
	// callback completes. Empty means same-origin relative redirects.
	GetFrontendURL() string
}

type OIDCConfig interface {
	GetIssuer() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
	GetSessionTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	OIDCVars
}

func New() Config {
	return mainConfig{}
}
