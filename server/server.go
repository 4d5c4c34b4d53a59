package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vidtube/vidtube-server/auth"
	"github.com/vidtube/vidtube-server/internal/config"
	"github.com/vidtube/vidtube-server/videos"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ObjectReader serves stored media back when uploads are kept in process.
type ObjectReader interface {
	Object(key string) ([]byte, bool)
}

// Services are the application services the HTTP layer exposes.
type Services struct {
	Sessions *auth.SessionService
	Accounts *auth.AccountService
	Videos   *videos.VideoService
	Health   []Pinger     // optional
	Media    ObjectReader // optional
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions *auth.SessionService
	accounts *auth.AccountService
	videos   *videos.VideoService
	health   []Pinger
	media    ObjectReader
}

func New(config config.Config, services Services) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("[Server New] config is required")
	}
	if services.Sessions == nil || services.Accounts == nil || services.Videos == nil {
		return nil, fmt.Errorf("[Server New] session, account and video services are required")
	}

	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		sessions: services.Sessions,
		accounts: services.Accounts,
		videos:   services.Videos,
		health:   services.Health,
		media:    services.Media,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
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
	log.Info().Msgf("[%-19s] %s", paintMethod(method), path)
}
