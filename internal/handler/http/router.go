package http

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/middleware"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterOptions carries the server level settings of the router.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Router struct {
	userHandler  UserHandlerInterface
	authHandler  AuthHandlerInterface
	mediaHandler MediaHandlerInterface
	postHandler  PostHandlerInterface
	auth         middleware.Authenticator
	health       HealthChecker
	opts         RouterOptions
}

func NewRouter(
	userUsecase usecasecontract.IUserUseCase,
	mediaUsecase usecasecontract.IMediaUseCase,
	postUsecase usecasecontract.IPostUseCase,
	health HealthChecker,
	opts RouterOptions,
) *Router {
	return &Router{
		userHandler:  NewUserHandler(userUsecase),
		authHandler:  NewAuthHandler(userUsecase),
		mediaHandler: NewMediaHandler(mediaUsecase, opts.MaxUploadBytes),
		postHandler:  NewPostHandler(postUsecase),
		auth:         userUsecase,
		health:       health,
		opts:         opts,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	router.Use(middleware.RequestID())
	if r.opts.Logger != nil {
		router.Use(middleware.RequestLogger(r.opts.Logger))
	}
	router.Use(middleware.Prometheus())
	router.Use(cors.New(corsConfig(r.opts.AllowedOrigins)))
	// rate limiter configuration
	if r.opts.RateLimitRPS > 0 {
		lmt := tollbooth.NewLimiter(r.opts.RateLimitRPS, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
		lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
		lmt.SetMessage("Too many requests, please try again later.")
		router.Use(middleware.RateLimiter(lmt))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", r.Health)

	// Public routes (no authentication required)
	auth := router.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
	}

	// Profile images are only served to an identified caller, the rest is public.
	router.GET("/media/:id", middleware.OptionalAuth(r.auth), r.mediaHandler.GetMedia)

	// Protected routes (authentication required)
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleWare(r.auth))
	{
		protected.POST("/media", r.mediaHandler.Upload)
		protected.GET("/media/user/:userId", r.mediaHandler.ListUserMedia)
		protected.GET("/media/user/:userId/:type", r.mediaHandler.ListUserMedia)
		protected.DELETE("/media/:id", r.mediaHandler.DeleteMedia)

		protected.POST("/posts", r.postHandler.CreatePost)
		protected.GET("/posts", r.postHandler.GetFeed)
		protected.GET("/posts/:externalRef", r.postHandler.GetPost)
		protected.PUT("/posts/:externalRef", r.postHandler.UpdatePost)
		protected.DELETE("/posts/:externalRef", r.postHandler.DeletePost)
		protected.POST("/posts/:externalRef/like", r.postHandler.ToggleLike)
		protected.GET("/posts/:externalRef/like", r.postHandler.CheckLike)

		protected.GET("/users/search", r.userHandler.SearchUsers)
		protected.GET("/users/me", r.userHandler.GetCurrentUser)
		protected.PUT("/users/me", r.userHandler.UpdateCurrentUser)
		protected.GET("/users/:id", r.userHandler.GetUser)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Health reports process liveness and database reachability.
func (r *Router) Health(c *gin.Context) {
	if r.health == nil {
		SuccessHandler(c, http.StatusOK, gin.H{"status": "ok", "database": "unknown"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := r.health.Ping(ctx); err != nil {
		_ = c.Error(err)
		SuccessHandler(c, http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	SuccessHandler(c, http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}
