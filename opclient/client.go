// Package opclient talks to the OpenID Provider: it builds authorization
// URLs, exchanges authorization codes for tokens with state/nonce/PKCE
// verification, and checks access tokens against the userinfo endpoint.
//
// Exchange failures come back as typed errors (OPError, ValidationError,
// NetworkError) so the HTTP layer can map them onto its stable error codes
// without inspecting message text.
package opclient

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/oidc-sandbox/go-oidc-rp/discovery"
	"golang.org/x/oauth2"
)

// Config carries the RP's registration with the OP.
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Client is the OP collaborator. It resolves endpoints through the shared
// discovery cache; token signature verification is delegated to go-oidc's
// JWKS verifier.
type Client struct {
	cfg   Config
	cache *discovery.Cache
}

// New creates a Client. Scopes default to "openid email profile".
func New(cfg Config, cache *discovery.Cache) *Client {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}
	return &Client{cfg: cfg, cache: cache}
}

// Discover resolves the OP configuration, priming the cache. The returned
// error satisfies errors.Is(err, discovery.ErrDiscovery) on failure.
func (c *Client) Discover(ctx context.Context) error {
	_, err := c.cache.Provider(ctx, c.cfg.Issuer)
	return err
}

// AuthCodeURL builds the authorization request URL for the given
// session-bound parameters. The code challenge must already be derived;
// the verifier itself never appears in the URL.
func (c *Client) AuthCodeURL(ctx context.Context, state, nonce, codeChallenge string) (string, error) {
	provider, err := c.cache.Provider(ctx, c.cfg.Issuer)
	if err != nil {
		return "", err
	}

	return c.oauth2Config(provider).AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// ExchangeInput carries the callback parameters and the expected values
// retrieved from the session store.
type ExchangeInput struct {
	Code          string
	QueryState    string
	ExpectedState string
	ExpectedNonce string
	CodeVerifier  string
}

// Identity is the result of a successful exchange.
type Identity struct {
	AccessToken string
	Email       string
	Sub         string
}

// Exchange verifies the state parameter, submits the authorization code to
// the token endpoint with the PKCE verifier, verifies the ID token and its
// nonce claim, and extracts the caller's identity.
//
// The redirect URI sent here is the same one used in the authorization
// request; the OP rejects the exchange otherwise.
func (c *Client) Exchange(ctx context.Context, in ExchangeInput) (Identity, error) {
	if subtle.ConstantTimeCompare([]byte(in.QueryState), []byte(in.ExpectedState)) != 1 {
		return Identity{}, &ValidationError{Field: FieldState, Detail: "callback state does not match the stored value"}
	}

	provider, err := c.cache.Provider(ctx, c.cfg.Issuer)
	if err != nil {
		return Identity{}, &NetworkError{Err: err}
	}

	ctx = oidc.ClientContext(ctx, c.cache.HTTPClient())
	token, err := c.oauth2Config(provider).Exchange(ctx, in.Code,
		oauth2.SetAuthURLParam("code_verifier", in.CodeVerifier),
	)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return Identity{}, &OPError{Code: retrieveErr.ErrorCode, Description: retrieveErr.ErrorDescription}
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return Identity{}, &NetworkError{Err: err}
		}
		// Not an OP payload and not a transport failure, e.g. a malformed
		// token response. Left unclassified for the caller's catch-all.
		return Identity{}, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return Identity{}, errors.New("token response missing id_token")
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: c.cfg.ClientID})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		var expiredErr *oidc.TokenExpiredError
		if errors.As(err, &expiredErr) {
			return Identity{}, &ValidationError{Field: FieldExpiry, Detail: err.Error()}
		}
		return Identity{}, &ValidationError{Field: FieldSignature, Detail: err.Error()}
	}

	if subtle.ConstantTimeCompare([]byte(idToken.Nonce), []byte(in.ExpectedNonce)) != 1 {
		return Identity{}, &ValidationError{Field: FieldNonce, Detail: "id token nonce does not match the stored value"}
	}

	if idToken.Subject == "" {
		return Identity{}, errors.New("id token claims missing sub")
	}
	if token.AccessToken == "" {
		return Identity{}, errors.New("token response missing access token")
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("extracting id token claims: %w", err)
	}

	return Identity{
		AccessToken: token.AccessToken,
		Email:       claims.Email,
		Sub:         idToken.Subject,
	}, nil
}

// UserInfo calls the OP's userinfo endpoint with the access token as a
// bearer credential. Any failure, transport or non-2xx alike, means the
// token can no longer be considered valid.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
	provider, err := c.cache.Provider(ctx, c.cfg.Issuer)
	if err != nil {
		return UserInfo{}, err
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	info, err := provider.UserInfo(oidc.ClientContext(ctx, c.cache.HTTPClient()), source)
	if err != nil {
		return UserInfo{}, fmt.Errorf("userinfo request: %w", err)
	}

	return UserInfo{Sub: info.Subject, Email: info.Email}, nil
}

// UserInfo is the subset of userinfo claims the RP consumes.
type UserInfo struct {
	Sub   string
	Email string
}

func (c *Client) oauth2Config(provider *oidc.Provider) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  c.cfg.RedirectURL,
		Scopes:       c.cfg.Scopes,
	}
}
