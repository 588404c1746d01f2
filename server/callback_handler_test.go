package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oidc-sandbox/go-oidc-rp/opclient"
	"github.com/oidc-sandbox/go-oidc-rp/server"
	"github.com/oidc-sandbox/go-oidc-rp/sessions"
	"github.com/stretchr/testify/require"
)

func testPending() sessions.PendingAuth {
	return sessions.PendingAuth{
		State:        "test-state",
		Nonce:        "test-nonce",
		CodeVerifier: "test-code-verifier",
	}
}

// callbackRequest builds a callback request carrying the session cookie
// and the given raw query.
func callbackRequest(query string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?"+query, nil)
	r.Header.Set("Cookie", "oidc_session="+testSessionID)
	return r
}

func seedPending(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.repo.Upsert(context.Background(), testSessionID, testPending(), 0))
}

func requireErrorRedirect(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/error?error="+code, w.Header().Get("Location"))
	require.Contains(t, setCookieFor(w), "Max-Age=0")
}

func TestCallbackHandler_Success(t *testing.T) {
	f := newFixture(t)
	seedPending(t, f)

	w := f.do(callbackRequest("code=auth-code&state=test-state"))

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/callback", w.Header().Get("Location"))

	// Cookie reissued with a fresh TTL under the same session ID.
	cookie := setCookieFor(w)
	require.Contains(t, cookie, "oidc_session="+testSessionID)
	require.Contains(t, cookie, "Max-Age=300")

	// The expected values handed to the exchange are the stored ones.
	require.Equal(t, "auth-code", f.op.lastExchange.Code)
	require.Equal(t, "test-state", f.op.lastExchange.ExpectedState)
	require.Equal(t, "test-nonce", f.op.lastExchange.ExpectedNonce)
	require.Equal(t, "test-code-verifier", f.op.lastExchange.CodeVerifier)

	// The pre-auth record was replaced by the post-auth shape.
	rec, ok := f.repo.Stored(testSessionID)
	require.True(t, ok)
	require.Equal(t, sessions.Authenticated{
		AccessToken: "test-access-token",
		Email:       testEmail,
		Sub:         testSub,
	}, rec)
}

func TestCallbackHandler_Replay(t *testing.T) {
	f := newFixture(t)
	seedPending(t, f)

	first := f.do(callbackRequest("code=auth-code&state=test-state"))
	require.Equal(t, "/callback", first.Header().Get("Location"))

	// The pre-auth record was consumed by the first attempt, so the same
	// callback again cannot find a pending login.
	second := f.do(callbackRequest("code=auth-code&state=test-state"))
	requireErrorRedirect(t, second, "missing_session")

	_, ok := f.repo.Stored(testSessionID)
	require.False(t, ok)
}

func TestCallbackHandler_OPErrors(t *testing.T) {
	t.Run("access_denied passes through", func(t *testing.T) {
		f := newFixture(t)
		seedPending(t, f)

		w := f.do(callbackRequest("error=access_denied"))
		requireErrorRedirect(t, w, "access_denied")
	})

	t.Run("other OP errors map to op_error", func(t *testing.T) {
		f := newFixture(t)
		seedPending(t, f)

		w := f.do(callbackRequest("error=server_error&error_description=boom"))
		requireErrorRedirect(t, w, "op_error")
	})

	t.Run("OP error wins even without code or session", func(t *testing.T) {
		f := newFixture(t)

		r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?error=access_denied", nil)
		w := f.do(r)
		requireErrorRedirect(t, w, "access_denied")
	})
}

func TestCallbackHandler_MissingInputs(t *testing.T) {
	t.Run("no code parameter", func(t *testing.T) {
		f := newFixture(t)
		seedPending(t, f)

		w := f.do(callbackRequest("state=test-state"))
		requireErrorRedirect(t, w, "missing_code")
		_, ok := f.repo.Stored(testSessionID)
		require.False(t, ok, "session must be purged on failure")
	})

	t.Run("no session cookie", func(t *testing.T) {
		f := newFixture(t)

		r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?code=auth-code&state=test-state", nil)
		w := f.do(r)
		requireErrorRedirect(t, w, "missing_session")
	})

	t.Run("no pending record", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(callbackRequest("code=auth-code&state=test-state"))
		requireErrorRedirect(t, w, "missing_session")
	})

	t.Run("store failure during lookup", func(t *testing.T) {
		f := newFixture(t)
		f.repo.ConsumeErr = sessions.ErrUnavailable

		w := f.do(callbackRequest("code=auth-code&state=test-state"))
		requireErrorRedirect(t, w, "missing_session")
	})
}

func TestCallbackHandler_ExchangeFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"state mismatch", &opclient.ValidationError{Field: opclient.FieldState}, "state_mismatch"},
		{"nonce mismatch", &opclient.ValidationError{Field: opclient.FieldNonce}, "nonce_mismatch"},
		{"bad signature", &opclient.ValidationError{Field: opclient.FieldSignature}, "invalid_signature"},
		{"expired token", &opclient.ValidationError{Field: opclient.FieldExpiry}, "token_expired"},
		{"op error payload", &opclient.OPError{Code: "invalid_grant"}, "op_error"},
		{"op denied", &opclient.OPError{Code: "access_denied"}, "access_denied"},
		{"transport failure", &opclient.NetworkError{Err: errors.New("connection refused")}, "network_error"},
		{"anything else", errors.New("unexpected"), "authentication_failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			seedPending(t, f)
			f.op.exchangeErr = tc.err

			w := f.do(callbackRequest("code=auth-code&state=test-state"))
			requireErrorRedirect(t, w, tc.wantCode)

			_, ok := f.repo.Stored(testSessionID)
			require.False(t, ok, "session must be purged on failure")
		})
	}
}

func TestCallbackHandler_InfrastructureFailures(t *testing.T) {
	t.Run("discovery failure", func(t *testing.T) {
		f := newFixture(t)
		seedPending(t, f)
		f.op.discoverErr = errors.New("well-known unreachable")

		w := f.do(callbackRequest("code=auth-code&state=test-state"))
		requireErrorRedirect(t, w, "network_error")
	})

	t.Run("finalize write failure", func(t *testing.T) {
		f := newFixture(t)
		seedPending(t, f)

		// Consuming the pending record works; storing the authenticated
		// record does not.
		f.repo.UpsertErr = sessions.ErrUnavailable

		w := f.do(callbackRequest("code=auth-code&state=test-state"))
		requireErrorRedirect(t, w, "authentication_failed")
	})
}
