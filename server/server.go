// Package server is the HTTP layer of the relying party: the login,
// callback and protected account endpoints, the session cookie codec and
// the middleware around them.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/oidc-sandbox/go-oidc-rp/accounts"
	"github.com/oidc-sandbox/go-oidc-rp/internal/config"
	"github.com/oidc-sandbox/go-oidc-rp/opclient"
	"github.com/oidc-sandbox/go-oidc-rp/sessions"
)

// OPClient is the OpenID Provider collaborator consumed by the handlers.
// *opclient.Client is the production implementation; tests substitute a
// fake to drive every terminal path of the callback state machine.
type OPClient interface {
	Discover(ctx context.Context) error
	AuthCodeURL(ctx context.Context, state, nonce, codeChallenge string) (string, error)
	Exchange(ctx context.Context, in opclient.ExchangeInput) (opclient.Identity, error)
	UserInfo(ctx context.Context, accessToken string) (opclient.UserInfo, error)
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions sessions.Repo
	op       OPClient

	// newAccountNumber is the resource action behind the protected API,
	// replaceable in tests to exercise the generation-failure path.
	newAccountNumber func() (string, error)
}

func New(config config.Config, sessionRepo sessions.Repo, op OPClient) *Server {
	s := &Server{
		mux:              http.NewServeMux(),
		config:           config,
		sessions:         sessionRepo,
		op:               op,
		newAccountNumber: accounts.Number,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
