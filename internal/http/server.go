package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/abhi01978/NechGen/internal/auth"
	"github.com/abhi01978/NechGen/internal/chat"
	"github.com/abhi01978/NechGen/internal/generation"
	"github.com/abhi01978/NechGen/internal/image"
)

// AuthService is the slice of the auth package the transport needs.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Authenticate(ctx context.Context, authorization string) (*auth.Identity, error)
}

// ContentGenerator runs the generation pipeline for one request.
type ContentGenerator interface {
	Generate(ctx context.Context, userID uint, prompt string, chatID uint) (*generation.Result, error)
}

// Options configures the HTTP server wiring.
type Options struct {
	Auth        AuthService
	Chats       chat.Store
	Generator   ContentGenerator
	Images      image.Generator
	Database    *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	RateLimiter RateLimiterSettings
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the JSON API and static document routes via Huma.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	auth        AuthService
	chats       chat.Store
	generator   ContentGenerator
	images      image.Generator
	logger      *logrus.Logger
	sentry      *sentry.Hub
	db          *gorm.DB
	rateLimiter *RateLimiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Auth == nil {
		return nil, eris.New("auth service is required")
	}
	if opts.Chats == nil {
		return nil, eris.New("conversation store is required")
	}
	if opts.Generator == nil {
		return nil, eris.New("content generator is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	mux := stdhttp.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("NechGen", "1.0.0"))

	srv := &Server{
		api:         api,
		mux:         mux,
		auth:        opts.Auth,
		chats:       opts.Chats,
		generator:   opts.Generator,
		images:      opts.Images,
		logger:      opts.Logger,
		sentry:      opts.SentryHub,
		db:          opts.Database,
		rateLimiter: NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL),
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerStaticRoutes()
	s.registerAuthRoutes()
	s.registerChatRoutes()
	s.registerGenerateRoute()
	s.registerImageRoute()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
