// Package oidcerr defines the stable, user-facing error codes emitted by
// the authentication endpoints. The frontend maps each code to display
// copy, so existing values must never change meaning.
package oidcerr

// Code identifies a terminal failure class of the login, callback or
// protected-resource flow.
type Code string

const (
	// Callback flow.
	MissingSession       Code = "missing_session"
	StateMismatch        Code = "state_mismatch"
	NonceMismatch        Code = "nonce_mismatch"
	MissingCode          Code = "missing_code"
	AccessDenied         Code = "access_denied"
	OPError              Code = "op_error"
	InvalidSignature     Code = "invalid_signature"
	TokenExpired         Code = "token_expired"
	NetworkError         Code = "network_error"
	AuthenticationFailed Code = "authentication_failed"

	// Protected resource.
	SessionNotFound   Code = "session_not_found"
	SessionError      Code = "session_error"
	InvalidToken      Code = "invalid_token"
	AccountGeneration Code = "account_generation_error"
)

func (c Code) String() string {
	return string(c)
}
