package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/auth"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/cache"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/config"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/handlers"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/middleware"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/notifications"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/storage"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/telemetry"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	logger.Log.Info("Glocal server starting",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	// Initialize database and run migrations
	if err := database.Initialize(cfg.DatabaseURL); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; without it the server falls back to database
	// reads for unread counts and poll results.
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	// Tracing (disabled unless OTEL_ENABLED is set)
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "glocal-api",
		Environment:  cfg.Environment,
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTEL_ENABLED") == "true",
		SamplingRate: samplingRateFromEnv(),
	})
	if err != nil {
		logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
	}

	// Prometheus metrics
	metrics.Initialize()

	// WebSocket hub for real-time notification delivery
	hub := websocket.NewHub()
	go hub.Run()

	notifier := notifications.NewNotifier(database.DB, websocket.NewNotificationPusher(hub))

	authService := auth.NewService(
		cfg.JWTSecret,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.APIBaseURL,
	)

	h := handlers.NewHandlers(authService, notifier, cfg.PollVoteSecret)

	// Image uploads need an S3 bucket; without one the endpoints
	// return 503 and everything else keeps working.
	if cfg.AWSBucket != "" {
		uploader, err := storage.NewS3Uploader(cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			logger.Log.Warn("Failed to initialize S3 uploader", zap.Error(err))
		} else {
			if err := uploader.CheckBucketAccess(context.Background()); err != nil {
				logger.Log.Warn("S3 bucket access check failed", zap.Error(err))
			}
			h.SetUploader(uploader)
		}
	} else {
		logger.Log.Info("AWS_BUCKET not set, image uploads disabled")
	}

	wsHandler := websocket.NewHandler(hub, authService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TracingMiddleware("glocal-api"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if cfg.RateLimitEnabled {
		r.Use(middleware.RateLimitDefault())
	}

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		if cfg.RateLimitEnabled {
			authGroup.Use(middleware.RateLimitAuth())
		}
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/google", h.GoogleLogin)
			authGroup.GET("/google/callback", h.GoogleCallback)
		}

		// Public reads. Optional auth so owners see their own hidden
		// content and responses carry viewer annotations.
		public := api.Group("")
		public.Use(h.OptionalAuthMiddleware())
		{
			public.GET("/posts", h.GetPosts)
			public.GET("/posts/:id", h.GetPost)
			public.GET("/posts/:id/comments", h.ListComments)
			public.GET("/polls", h.ListPolls)
			public.GET("/polls/:id", h.GetPoll)
			public.GET("/polls/:id/results", h.GetPollResults)
			public.GET("/artists", h.ListArtists)
			public.GET("/artists/:id", h.GetUserProfile)
			public.GET("/users/:id", h.GetUserProfile)
		}

		authed := api.Group("")
		authed.Use(h.AuthMiddleware())
		{
			authed.GET("/users/me", h.GetMe)
			authed.PATCH("/users/me", h.UpdateMe)
			authed.POST("/users/me/avatar", h.UploadAvatar)

			writes := authed.Group("")
			if cfg.RateLimitEnabled {
				writes.Use(middleware.RateLimitWrite())
			}
			{
				writes.POST("/posts", h.CreatePost)
				writes.POST("/posts/:id/comments", h.CreateComment)
				writes.POST("/posts/:id/image", h.UploadPostImage)
				writes.POST("/polls", h.CreatePoll)
				writes.POST("/reports", h.CreateReport)
				writes.POST("/bookings", h.CreateBooking)
			}

			authed.PATCH("/posts/:id", h.UpdatePost)
			authed.DELETE("/posts/:id", h.DeletePost)
			authed.POST("/posts/:id/like", h.LikePost)
			authed.DELETE("/posts/:id/like", h.UnlikePost)
			authed.POST("/posts/:id/bookmark", h.BookmarkPost)
			authed.DELETE("/posts/:id/bookmark", h.UnbookmarkPost)
			authed.GET("/bookmarks", h.ListBookmarks)

			authed.PATCH("/comments/:id", h.UpdateComment)
			authed.DELETE("/comments/:id", h.DeleteComment)
			authed.POST("/comments/:id/like", h.LikeComment)
			authed.DELETE("/comments/:id/like", h.UnlikeComment)

			vote := authed.Group("")
			if cfg.RateLimitEnabled {
				vote.Use(middleware.RateLimitVote())
			}
			vote.POST("/polls/:id/vote", h.Vote)

			authed.GET("/polls/:id/my-vote", h.MyVote)
			authed.DELETE("/polls/:id/vote", h.RetractVote)
			authed.DELETE("/polls/:id", h.DeletePoll)

			authed.GET("/notifications", h.GetNotifications)
			authed.GET("/notifications/unread-count", h.GetUnreadCount)
			authed.POST("/notifications/:id/read", h.MarkNotificationRead)
			authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
			authed.DELETE("/notifications/:id", h.DeleteNotification)

			authed.GET("/bookings", h.ListMyBookings)
			authed.POST("/bookings/:id/accept", h.AcceptBooking)
			authed.POST("/bookings/:id/decline", h.DeclineBooking)
			authed.POST("/bookings/:id/cancel", h.CancelBooking)
			authed.POST("/bookings/:id/complete", h.CompleteBooking)

			authed.POST("/artists/:id/subscribe", h.SubscribeToArtist)
			authed.DELETE("/artists/:id/subscribe", h.UnsubscribeFromArtist)
			authed.GET("/subscriptions", h.ListMySubscriptions)
			authed.GET("/artists/me/subscribers", h.ListArtistSubscribers)

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireModerator())
			{
				admin.GET("/reports", h.ListReports)
				admin.POST("/reports/:id/resolve", h.ResolveReport)
				admin.GET("/users", h.ListUsers)
				admin.POST("/users/:id/ban", h.BanUser)
				admin.DELETE("/users/:id/ban", h.UnbanUser)
			}
		}

		// WebSocket connection endpoint; auth via ?token= or header
		api.GET("/ws", wsHandler.HandleWebSocket)
		api.GET("/ws/stats", h.AuthMiddleware(), wsHandler.HandleStats)
	}

	srv := &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := hub.Shutdown(ctx); err != nil {
		logger.Log.Warn("WebSocket shutdown incomplete", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Warn("Tracer shutdown incomplete", zap.Error(err))
		}
	}

	logger.Log.Info("Server exited")
}

func samplingRateFromEnv() float64 {
	rate, err := strconv.ParseFloat(os.Getenv("OTEL_SAMPLING_RATE"), 64)
	if err != nil || rate <= 0 || rate > 1 {
		return 1.0
	}
	return rate
}
