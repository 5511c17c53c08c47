// Package server exposes the assistant, chat sessions, accounts and the
// reference solar system over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cosmic/assistant"
	"cosmic/config"
	"cosmic/storage"
)

// SessionListLimit caps the sessions returned by the list route.
const SessionListLimit = 20

// Options configures the HTTP layer.
type Options struct {
	JWTSecret    string
	RateLimit    float64 // requests per second per client, 0 disables
	AllowOrigins []string
}

// OptionsFromConfig derives Options from the process configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimit,
	}
}

// Server wires HTTP routes to the assistant and session storage.
type Server struct {
	svc     *assistant.Service
	store   *storage.SessionStorage
	tokens  *TokenService // nil when no secret is configured
	limiter *clientLimiter
	logger  *slog.Logger
	cors    cors.Config
	now     func() time.Time
}

func New(opts Options, svc *assistant.Service, store *storage.SessionStorage, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:     svc,
		store:   store,
		limiter: newClientLimiter(opts.RateLimit),
		logger:  logger,
		now:     time.Now,
	}

	if tokens, err := NewTokenService(opts.JWTSecret); err == nil {
		s.tokens = tokens
	} else {
		logger.Warn("[Server] authentication disabled, protected routes will answer 401", "error", err)
	}

	s.cors = cors.DefaultConfig()
	s.cors.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	s.cors.ExposeHeaders = []string{requestIDHeader}
	if len(opts.AllowOrigins) > 0 {
		s.cors.AllowOrigins = opts.AllowOrigins
	} else {
		s.cors.AllowAllOrigins = true
	}

	return s
}

// Tokens returns the token service, or nil when authentication is disabled.
func (s *Server) Tokens() *TokenService {
	return s.tokens
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	return s.router()
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(s.cors))

	api := r.Group("/api")
	api.GET("/health", s.health)

	ai := api.Group("/ai", rateLimit(s.limiter))
	{
		ai.GET("/status", s.aiStatus)
		ai.GET("/providers", s.aiProviders)
		ai.POST("/test", requireAuth(s.tokens), s.aiTest)
	}

	chat := api.Group("/chat", rateLimit(s.limiter))
	{
		chat.GET("/planet/:name", s.planetInfo)

		chat.POST("/sessions", optionalAuth(s.tokens), s.createSession)
		chat.GET("/sessions/:id", optionalAuth(s.tokens), s.getSession)
		chat.POST("/sessions/:id/messages", optionalAuth(s.tokens), s.sendMessage)

		chat.GET("/sessions", requireAuth(s.tokens), s.listSessions)
		chat.DELETE("/sessions/:id", requireAuth(s.tokens), s.deleteSession)
	}

	auth := api.Group("/auth", rateLimit(s.limiter))
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.GET("/me", requireAuth(s.tokens), s.me)
	}

	users := api.Group("/users", rateLimit(s.limiter), requireAuth(s.tokens))
	{
		users.GET("/stats", s.userStats)
		users.GET("/chat-history", s.chatHistory)
		users.GET("/export", s.exportData)
		users.DELETE("/delete-data", s.deleteData)
	}

	sys := api.Group("/solar-system")
	{
		sys.GET("/default", s.solarDefault)
		sys.GET("/planets/list", s.solarPlanets)
		sys.GET("/planet/:planetName", s.solarPlanet)
		sys.GET("/stats/overview", s.solarStats)
	}

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "Route not found")
	})

	return r
}
