package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Session lifecycle
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Account (gated)
	s.RegisterRouteHandler("POST "+RouteChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteUpdateAccount, ChainMiddleware(s.UpdateAccountHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteAvatar, ChainMiddleware(s.UpdateAvatarHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteCoverImage, ChainMiddleware(s.UpdateCoverImageHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Videos (gated)
	s.RegisterRouteHandler("POST "+RouteVideos, ChainMiddleware(s.PublishVideoHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteVideoByID, ChainMiddleware(s.GetVideoHandler(), s.APIMiddleware(s.RequireAuth())...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteUsers+"/", ChainMiddleware(http.NotFound, s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteVideos+"/", ChainMiddleware(http.NotFound, s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteVideos, ChainMiddleware(http.NotFound, s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())

	if s.media != nil {
		s.RegisterRouteFunc("GET "+RouteMedia, s.MediaHandler())
	}
}
