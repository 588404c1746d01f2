package config

import (
	"strconv"
	"time"
)

const (
	issuerEnvVar       = "OIDC_ISSUER"
	clientIDEnvVar     = "OIDC_CLIENT_ID"
	clientSecretEnvVar = "OIDC_CLIENT_SECRET"
	redirectURLEnvVar  = "REDIRECT_URI"
	sessionTTLEnvVar   = "SESSION_TTL_SECONDS"
)

// defaultSessionTTL bounds the whole login round trip; a pre-auth record
// older than this is useless anyway because the OP's code has expired.
const defaultSessionTTL = 300 * time.Second

type OIDCVars struct{}

var _ OIDCConfig = OIDCVars{}

func (OIDCVars) GetIssuer() string {
	return GetEnv(issuerEnvVar, "")
}

func (OIDCVars) GetClientID() string {
	return GetEnv(clientIDEnvVar, "")
}

func (OIDCVars) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

func (OIDCVars) GetRedirectURL() string {
	return GetEnv(redirectURLEnvVar, "http://localhost:8080/api/auth/callback")
}

func (OIDCVars) GetSessionTTL() time.Duration {
	raw := GetEnv(sessionTTLEnvVar, "")
	if raw == "" {
		return defaultSessionTTL
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultSessionTTL
	}
	return time.Duration(seconds) * time.Second
}
