package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/oidc-sandbox/go-oidc-rp/internal/oidcerr"
	"github.com/oidc-sandbox/go-oidc-rp/sessions"
	"github.com/rs/zerolog/log"
)

// accountResponse is the payload of a successful account creation.
type accountResponse struct {
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
	Sub           string `json:"sub"`
}

// AccountHandler is the token-gated API. It checks the access token for
// liveness against the OP's userinfo endpoint before performing the
// resource action, and the session is single-use: once the userinfo check
// has passed, the record is destroyed and the cookie cleared no matter how
// the resource action ends.
func (s *Server) AccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sessionID := sessionIDFromRequest(r)
		if sessionID == "" {
			writeJSONCodeError(w, "Authentication required", oidcerr.MissingSession, http.StatusUnauthorized)
			return
		}

		record, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, sessions.ErrNotFound) {
				writeJSONCodeError(w, "Authentication required. Please sign in again.", oidcerr.SessionNotFound, http.StatusUnauthorized)
				return
			}
			// A store failure is an infrastructure problem, not an auth
			// failure, and is reported as such.
			log.Err(err).Str("session_id", redactSessionID(sessionID)).Msg("Failed to load session")
			writeJSONCodeError(w, "Failed to load session", oidcerr.SessionError, http.StatusInternalServerError)
			return
		}

		authenticated, ok := record.(sessions.Authenticated)
		if !ok {
			writeJSONCodeError(w, "Authentication required. Please sign in again.", oidcerr.SessionNotFound, http.StatusUnauthorized)
			return
		}

		if _, err := s.op.UserInfo(ctx, authenticated.AccessToken); err != nil {
			log.Err(err).Str("session_id", redactSessionID(sessionID)).Msg("Access token rejected by the userinfo endpoint")
			s.destroySession(ctx, sessionID)
			http.SetCookie(w, deleteSessionCookie())
			writeJSONCodeError(w, "Access token is no longer valid. Please sign in again.", oidcerr.InvalidToken, http.StatusUnauthorized)
			return
		}

		number, err := s.newAccountNumber()

		s.destroySession(ctx, sessionID)
		http.SetCookie(w, deleteSessionCookie())

		if err != nil {
			log.Err(err).Msg("Account number generation failed")
			writeJSONCodeError(w, "Failed to generate an account number. Please try again.", oidcerr.AccountGeneration, http.StatusInternalServerError)
			return
		}

		log.Info().Str("sub", authenticated.Sub).Msg("Account created")
		writeJSON(w, http.StatusOK, accountResponse{
			AccountNumber: number,
			Email:         authenticated.Email,
			Sub:           authenticated.Sub,
		})
	}
}

// destroySession deletes the record, logging and swallowing failures; the
// TTL reclaims anything a failed delete leaves behind.
func (s *Server) destroySession(ctx context.Context, sessionID string) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", redactSessionID(sessionID)).Msg("Failed to delete session")
	}
}
