package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oidc-sandbox/go-oidc-rp/internal/config"
	"github.com/oidc-sandbox/go-oidc-rp/opclient"
	"github.com/oidc-sandbox/go-oidc-rp/server"
	"github.com/oidc-sandbox/go-oidc-rp/sessions/repofakes"
)

const (
	testSessionID = "fixed-session-id-for-tests-0123456789abcdef0"
	testSub       = "user-sub-123"
	testEmail     = "test@example.com"
)

// fakeOPClient drives the handlers through every terminal path without a
// network.
type fakeOPClient struct {
	discoverErr error

	authURL string
	authErr error

	identity    opclient.Identity
	exchangeErr error

	userInfo    opclient.UserInfo
	userInfoErr error

	lastAuthState     string
	lastAuthNonce     string
	lastAuthChallenge string
	lastExchange      opclient.ExchangeInput
	userInfoCalls     int
}

var _ server.OPClient = (*fakeOPClient)(nil)

func (f *fakeOPClient) Discover(context.Context) error {
	return f.discoverErr
}

func (f *fakeOPClient) AuthCodeURL(_ context.Context, state, nonce, codeChallenge string) (string, error) {
	f.lastAuthState = state
	f.lastAuthNonce = nonce
	f.lastAuthChallenge = codeChallenge
	if f.authErr != nil {
		return "", f.authErr
	}
	if f.authURL == "" {
		return "https://op.example.com/authorize?state=" + state, nil
	}
	return f.authURL, nil
}

func (f *fakeOPClient) Exchange(_ context.Context, in opclient.ExchangeInput) (opclient.Identity, error) {
	f.lastExchange = in
	if f.exchangeErr != nil {
		return opclient.Identity{}, f.exchangeErr
	}
	return f.identity, nil
}

func (f *fakeOPClient) UserInfo(_ context.Context, _ string) (opclient.UserInfo, error) {
	f.userInfoCalls++
	if f.userInfoErr != nil {
		return opclient.UserInfo{}, f.userInfoErr
	}
	return f.userInfo, nil
}

type fixture struct {
	server *server.Server
	repo   *repofakes.FakeSessionRepo
	op     *fakeOPClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	repo := repofakes.NewFakeSessionRepo()
	op := &fakeOPClient{
		identity: opclient.Identity{AccessToken: "test-access-token", Email: testEmail, Sub: testSub},
		userInfo: opclient.UserInfo{Sub: testSub, Email: testEmail},
	}
	return &fixture{
		server: server.New(config.New(), repo, op),
		repo:   repo,
		op:     op,
	}
}

func (f *fixture) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)
	return w
}

// setCookieFor returns the Set-Cookie header that names the session
// cookie, or the empty string.
func setCookieFor(w *httptest.ResponseRecorder) string {
	for _, h := range w.Result().Header.Values("Set-Cookie") {
		if len(h) >= len("oidc_session") && h[:len("oidc_session")] == "oidc_session" {
			return h
		}
	}
	return ""
}
