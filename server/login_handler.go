package server

import (
	"net/http"

	"github.com/oidc-sandbox/go-oidc-rp/securerand"
	"github.com/oidc-sandbox/go-oidc-rp/sessions"
	"github.com/rs/zerolog/log"
)

// loginParams is the per-attempt security material minted at login. The
// code challenge is derived once here and only ever sent to the OP; it is
// never stored.
type loginParams struct {
	sessionID     string
	state         string
	nonce         string
	codeVerifier  string
	codeChallenge string
}

func generateLoginParams() (loginParams, error) {
	var p loginParams
	var err error

	if p.sessionID, err = securerand.Token(); err != nil {
		return loginParams{}, err
	}
	if p.state, err = securerand.Token(); err != nil {
		return loginParams{}, err
	}
	if p.nonce, err = securerand.Token(); err != nil {
		return loginParams{}, err
	}
	if p.codeVerifier, err = securerand.Token(); err != nil {
		return loginParams{}, err
	}
	p.codeChallenge = securerand.CodeChallenge(p.codeVerifier)
	return p, nil
}

// LoginHandler starts the authorization code flow: it mints the session ID
// and the state/nonce/verifier triple, persists the triple server-side,
// and redirects the browser to the OP's authorization endpoint.
//
// The response is exactly one of: a 302 carrying the session cookie, or a
// 5xx JSON error with no cookie. A redirect is never issued unless the
// security parameters are durably stored first, because an un-persisted
// state or nonce could not be verified on the way back.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := generateLoginParams()
		if err != nil {
			log.Err(err).Msg("Failed to generate login security parameters")
			writeJSONError(w, "Failed to initialize session", http.StatusInternalServerError)
			return
		}

		ttl := s.config.GetSessionTTL()
		pending := sessions.PendingAuth{
			State:        params.state,
			Nonce:        params.nonce,
			CodeVerifier: params.codeVerifier,
		}
		if err := s.sessions.Upsert(ctx, params.sessionID, pending, ttl); err != nil {
			log.Err(err).Msg("Failed to persist login session")
			writeJSONError(w, "Failed to initialize session", http.StatusInternalServerError)
			return
		}

		authURL, err := s.op.AuthCodeURL(ctx, params.state, params.nonce, params.codeChallenge)
		if err != nil {
			log.Err(err).Msg("Failed to resolve the authorization endpoint")
			// The pending record is orphaned; TTL would reclaim it, but tidy
			// up now. A failure here must not mask the primary error.
			if derr := s.sessions.Delete(ctx, params.sessionID); derr != nil {
				log.Warn().Err(derr).Str("session_id", redactSessionID(params.sessionID)).Msg("Failed to delete orphaned login session")
			}
			writeJSONError(w, "Server configuration error", http.StatusInternalServerError)
			return
		}

		log.Info().Str("session_id", redactSessionID(params.sessionID)).Msg("Login initiated")
		http.SetCookie(w, newSessionCookie(params.sessionID, int(ttl.Seconds())))
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}
