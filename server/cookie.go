package server

import (
	"net/http"
	"net/url"
	"strings"
)

// sessionCookieName is the single cookie this service sets. Its value is
// the opaque session ID; the security parameters themselves never leave
// the server.
const sessionCookieName = "oidc_session"

// newSessionCookie builds the session cookie with its fixed security
// attributes. SameSite is Lax rather than Strict because the browser must
// still attach the cookie when it arrives on the OP's top-level redirect
// back to the callback URL.
func newSessionCookie(sessionID string, maxAgeSeconds int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// deleteSessionCookie instructs the browser to drop the session cookie
// (serialized as Max-Age=0). Sent on every path that destroys the
// server-side record, success and failure alike.
func deleteSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// parseCookies parses a Cookie header into a name→value map. Pairs are
// split on the first "=" only, so values may themselves contain "=";
// values are URL-decoded; nameless pairs are dropped.
func parseCookies(cookieHeader string) map[string]string {
	cookies := make(map[string]string)
	if cookieHeader == "" {
		return cookies
	}

	for _, part := range strings.Split(cookieHeader, ";") {
		name, value, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// PathUnescape rather than QueryUnescape: "+" in a cookie value is
		// a literal plus, not a space.
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}
	return cookies
}

// sessionIDFromRequest returns the session ID carried by the request
// cookie, or the empty string.
func sessionIDFromRequest(r *http.Request) string {
	return parseCookies(r.Header.Get("Cookie"))[sessionCookieName]
}
