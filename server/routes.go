package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())

	// OIDC authorization code flow
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))

	// Token-gated API
	s.RegisterRouteFunc("POST "+RouteAccount, ChainMiddleware(s.AccountHandler(), s.APIMiddleware()...))
}
