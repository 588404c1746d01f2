package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/oidc-sandbox/go-oidc-rp/internal/oidcerr"
	"github.com/oidc-sandbox/go-oidc-rp/opclient"
	"github.com/oidc-sandbox/go-oidc-rp/sessions"
	"github.com/rs/zerolog/log"
)

// CallbackHandler processes the OP's redirect back to the RP. It runs the
// callback state machine as a linear sequence of checks, each terminating
// into failCallback with a stable error code or falling through to the
// next step. Every terminal path, success or failure, leaves at most one
// live session record and never the pre-auth shape: the pending record is
// consumed atomically in step 3, so a replayed callback dies there.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()
		sessionID := sessionIDFromRequest(r)

		// Step 1: the OP reported an authorization error.
		if opErr := query.Get("error"); opErr != "" {
			log.Warn().Str("op_error", opErr).Str("description", query.Get("error_description")).Msg("OP returned an authorization error")
			code := oidcerr.OPError
			if opErr == "access_denied" {
				code = oidcerr.AccessDenied
			}
			s.failCallback(w, r, sessionID, code)
			return
		}

		// Step 2: an authorization code must be present.
		authCode := query.Get("code")
		if authCode == "" {
			log.Warn().Msg("Callback carried neither code nor error")
			s.failCallback(w, r, sessionID, oidcerr.MissingCode)
			return
		}

		// Step 3: resolve and consume the pending session. Absent, expired,
		// malformed and store-failure all read the same from here: there is
		// no verifiable login in flight.
		if sessionID == "" {
			log.Warn().Msg("Callback request carried no session cookie")
			s.failCallback(w, r, "", oidcerr.MissingSession)
			return
		}
		pending, err := s.sessions.ConsumePending(ctx, sessionID)
		if err != nil {
			log.Err(err).Str("session_id", redactSessionID(sessionID)).Msg("No pending login session for callback")
			s.failCallback(w, r, sessionID, oidcerr.MissingSession)
			return
		}

		// Step 4: the OP configuration must be resolvable.
		if err := s.op.Discover(ctx); err != nil {
			log.Err(err).Msg("OIDC discovery failed during callback")
			s.failCallback(w, r, sessionID, oidcerr.NetworkError)
			return
		}

		// Step 5: exchange the code, verifying state, nonce and PKCE.
		identity, err := s.op.Exchange(ctx, opclient.ExchangeInput{
			Code:          authCode,
			QueryState:    query.Get("state"),
			ExpectedState: pending.State,
			ExpectedNonce: pending.Nonce,
			CodeVerifier:  pending.CodeVerifier,
		})
		if err != nil {
			code := classifyExchangeError(err)
			log.Err(err).Str("error_code", code.String()).Str("session_id", redactSessionID(sessionID)).Msg("Token exchange failed")
			s.failCallback(w, r, sessionID, code)
			return
		}

		// Steps 6–7: store the credentials under the same session ID so the
		// cookie stays valid. Without a durably stored access token the
		// success page would be a lie; the user must re-authenticate.
		ttl := s.config.GetSessionTTL()
		authenticated := sessions.Authenticated{
			AccessToken: identity.AccessToken,
			Email:       identity.Email,
			Sub:         identity.Sub,
		}
		if err := s.sessions.Upsert(ctx, sessionID, authenticated, ttl); err != nil {
			log.Err(err).Str("session_id", redactSessionID(sessionID)).Msg("Failed to store authenticated session")
			s.failCallback(w, r, sessionID, oidcerr.AuthenticationFailed)
			return
		}

		// Step 8: reissue the cookie with a fresh TTL and send the browser
		// to the success page. No claim values in the URL; they would leak
		// into history and referrer headers.
		log.Info().Str("session_id", redactSessionID(sessionID)).Str("sub", identity.Sub).Msg("Authentication succeeded")
		http.SetCookie(w, newSessionCookie(sessionID, int(ttl.Seconds())))
		http.Redirect(w, r, s.config.GetFrontendURL()+RouteCallbackSuccess, http.StatusFound)
	}
}

// failCallback is the single error terminal of the callback state machine:
// destroy the session if one is known, clear the cookie, and redirect to
// the error page with the chosen code. Cleanup failures are logged and
// swallowed so they never replace the code already picked.
func (s *Server) failCallback(w http.ResponseWriter, r *http.Request, sessionID string, code oidcerr.Code) {
	if sessionID != "" {
		if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", redactSessionID(sessionID)).Msg("Failed to delete session during callback cleanup")
		}
	}
	http.SetCookie(w, deleteSessionCookie())

	dest := s.config.GetFrontendURL() + RouteErrorPage + "?error=" + url.QueryEscape(code.String())
	http.Redirect(w, r, dest, http.StatusFound)
}

// classifyExchangeError maps the exchange collaborator's typed errors onto
// the stable error taxonomy. Anything unrecognized lands on the
// authentication_failed catch-all; nothing escapes unclassified.
func classifyExchangeError(err error) oidcerr.Code {
	var opErr *opclient.OPError
	var valErr *opclient.ValidationError
	var netErr *opclient.NetworkError

	switch {
	case errors.As(err, &opErr):
		if opErr.Code == "access_denied" {
			return oidcerr.AccessDenied
		}
		return oidcerr.OPError
	case errors.As(err, &valErr):
		switch valErr.Field {
		case opclient.FieldState:
			return oidcerr.StateMismatch
		case opclient.FieldNonce:
			return oidcerr.NonceMismatch
		case opclient.FieldSignature:
			return oidcerr.InvalidSignature
		case opclient.FieldExpiry:
			return oidcerr.TokenExpired
		default:
			return oidcerr.AuthenticationFailed
		}
	case errors.As(err, &netErr):
		return oidcerr.NetworkError
	default:
		return oidcerr.AuthenticationFailed
	}
}
