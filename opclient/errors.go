package opclient

import "fmt"

// Fields reported by ValidationError. Callers classify on these constants
// rather than matching error message text.
const (
	FieldState     = "state"
	FieldNonce     = "nonce"
	FieldSignature = "signature"
	FieldExpiry    = "expiry"
)

// OPError is an explicit error payload returned by the OP, either on the
// callback query or from the token endpoint.
type OPError struct {
	Code        string
	Description string
}

func (e *OPError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("op returned %q: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("op returned %q", e.Code)
}

// ValidationError is a local verification failure of one of the
// session-bound security parameters or of the ID token itself.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Field, e.Detail)
}

// NetworkError is a transport-level failure talking to the OP, as opposed
// to an application error the OP chose to return.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("op unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
