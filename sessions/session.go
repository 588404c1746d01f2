// Package sessions stores the per-login server-side state of the
// authorization code flow, keyed by an opaque session ID that also travels
// in the browser cookie.
//
// A session record is a tagged union: it is either the pre-auth security
// parameters written at login, or the post-auth credentials written after a
// successful token exchange. A given session ID holds exactly one live
// record at any time; the callback's pre-auth→post-auth transition is an
// overwrite under the same ID so the browser cookie stays valid.
package sessions

// Record is the value stored against a session ID. The two concrete shapes
// are PendingAuth and Authenticated; the type switch is the discriminator.
type Record interface {
	sealed()
}

// PendingAuth holds the security-parameter triple written by the login
// endpoint and consumed exactly once by the callback. None of the values
// ever leave the server.
type PendingAuth struct {
	State        string
	Nonce        string
	CodeVerifier string
}

func (PendingAuth) sealed() {}

// complete reports whether all required parameters are present. A partial
// record is indistinguishable from no session on the read path.
func (p PendingAuth) complete() bool {
	return p.State != "" && p.Nonce != "" && p.CodeVerifier != ""
}

// Authenticated holds the credentials written by the callback after a
// successful exchange, consumed single-use by the protected API.
type Authenticated struct {
	AccessToken string
	Email       string
	Sub         string
}

func (Authenticated) sealed() {}

func (a Authenticated) complete() bool {
	return a.AccessToken != "" && a.Email != "" && a.Sub != ""
}
