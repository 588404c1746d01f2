// Package securerand generates the opaque security parameters used by the
// authorization code flow: session IDs, state, nonce and PKCE code verifiers.
//
// Every token carries 256 bits of entropy and is encoded with URL-safe
// base64 without padding, so it is usable in query parameters and cookies
// without further escaping. Callers must not assume any semantic difference
// between tokens beyond their usage context.
package securerand

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// tokenLength is the number of random bytes per token.
// 32 bytes (256 bits) encode to 43 base64url characters, which also satisfies
// the RFC 7636 minimum length for a code verifier.
const tokenLength = 32

// ErrEntropyUnavailable is returned when the system RNG cannot supply
// random bytes. Callers must treat this as fatal for the request; there is
// no fallback to a weaker source.
var ErrEntropyUnavailable = errors.New("entropy unavailable")

// Token returns a new cryptographically strong opaque token.
func Token() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CodeChallenge derives the S256 PKCE code challenge from a code verifier
// as specified by RFC 7636: BASE64URL(SHA256(verifier)), no padding.
// The result is deterministic and is only ever transmitted to the OP.
func CodeChallenge(codeVerifier string) string {
	sum := sha256.Sum256([]byte(codeVerifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
