package server

import (
	"encoding/json"
	"net/http"

	"github.com/oidc-sandbox/go-oidc-rp/internal/oidcerr"
)

const contentTypeJSON = "application/json; charset=utf-8"

// IndexHandler reports service status. The frontend itself is hosted
// elsewhere; this process only serves the API.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"app":    s.config.GetAppName(),
			"status": "ok",
		})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the pre-session error shape used by the login
// endpoint, where no stable code exists yet.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// writeJSONCodeError writes the protected-API error shape: a human message
// plus the stable code the frontend maps to copy.
func writeJSONCodeError(w http.ResponseWriter, message string, code oidcerr.Code, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code.String(),
	})
}

// redactSessionID keeps log lines correlatable without disclosing a live
// credential.
func redactSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8] + "..."
}
