package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	handlerHttp "github.com/mikiasgoitom/Snapfeed/internal/handler/http"
	redisclient "github.com/mikiasgoitom/Snapfeed/internal/infrastructure/cache"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/config"
	database "github.com/mikiasgoitom/Snapfeed/internal/infrastructure/database"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/identity"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/idgen"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/imaging"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/jwt"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/logger"
	passwordservice "github.com/mikiasgoitom/Snapfeed/internal/infrastructure/password_service"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/repository/mongodb"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/store"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/validator"
	"github.com/mikiasgoitom/Snapfeed/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger := logger.NewSlogLogger(cfg.Env, cfg.LogLevel)
	appConfig := config.NewConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Establish MongoDB connection
	mongoClient, err := database.NewMongoDBClient(cfg.MongoURI)
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect()
	db := mongoClient.Database(cfg.MongoDBName)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		appLogger.Fatalf("Failed to create indexes: %v", err)
	}

	// Register custom validators
	validator.RegisterCustomValidators()

	// Dependency Injection: Repositories
	userRepo := mongodb.NewMongoUserRepository(db)
	mediaRepo := mongodb.NewMediaRepository(db)
	postRepo := mongodb.NewPostRepository(db)

	// Dependency Injection: Services
	hasher := passwordservice.NewHasher()
	jwtService := jwt.NewJWTService(jwt.NewJWTManager(cfg.JWTSecret, appConfig.GetAccessTokenExpiry()))
	idGenerator := idgen.NewGenerator()
	appValidator := validator.NewValidator()
	normalizer := imaging.NewNormalizer(cfg.ImageMaxWidth, cfg.ImageJPEGQuality, cfg.MaxOutputBytes())

	var identityVerifier contract.IIdentityVerifier
	if cfg.IdentityEnabled() {
		v, err := identity.NewVerifier(cfg.IDPJWKSURL, cfg.IDPIssuer, cfg.IDPAudience, cfg.JWKSRefreshInterval(), appLogger)
		if err != nil {
			appLogger.Fatalf("Failed to initialise identity verifier: %v", err)
		}
		identityVerifier = v
		appLogger.Infof("identity provider tokens accepted from issuer %s", cfg.IDPIssuer)
	}

	// Dependency Injection: Usecases
	mediaUsecase := usecase.NewMediaUsecase(mediaRepo, normalizer, idGenerator, appLogger, appConfig)
	postUsecase := usecase.NewPostUsecase(postRepo, mediaRepo, idGenerator, appValidator, appLogger)
	userUsecase := usecase.NewUserUsecase(userRepo, postRepo, mediaRepo, hasher, jwtService, identityVerifier, appLogger, appConfig, appValidator, idGenerator)

	// Optional Dependency Injection: Redis cache
	if cfg.RedisURL != "" {
		rdb, err := redisclient.NewRedisFromURL(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Warnf("feed cache disabled: %v", err)
		} else {
			defer redisclient.Close(rdb)
			postUsecase.SetFeedCache(store.NewFeedCacheStore(rdb, cfg.FeedCacheTTL()))
		}
	}

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appLogger.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	router.MaxMultipartMemory = appConfig.GetMaxUploadBytes()

	// Setup API routes
	appRouter := handlerHttp.NewRouter(userUsecase, mediaUsecase, postUsecase, mongoClient, handlerHttp.RouterOptions{
		AllowedOrigins: cfg.Origins(),
		RateLimitRPS:   cfg.RateLimitRPS,
		MaxUploadBytes: appConfig.GetMaxUploadBytes(),
		Logger:         appLogger.Slog(),
	})
	appRouter.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server
	go func() {
		appLogger.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("graceful shutdown failed: %v", err)
	}
}
