package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"bulletin_board/internal/avatar"
	"bulletin_board/internal/config"
	"bulletin_board/internal/handler"
	"bulletin_board/internal/live"
	"bulletin_board/internal/logger"
	"bulletin_board/internal/middleware"
	"bulletin_board/internal/repository"
	"bulletin_board/internal/service"
	"bulletin_board/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Configuration ---
	loaded, err := config.LoadDotEnv()
	if err != nil {
		logger.New(0).Fatal("failed to load .env", "error", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}

	log := logger.New(cfg.LogLevel)
	if !loaded {
		log.Info("no .env file found, relying on environment variables")
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	// --- Migrations ---
	if err := config.Migrate(ctx, cfg.Database.DSN, log); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	// --- Avatar storage ---
	avatars, err := newAvatarStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize avatar storage", "error", err, "backend", cfg.Avatar.Backend)
	}
	fetcher := avatar.NewFetcher(cfg.Avatar.FetchTimeout, cfg.Avatar.MaxBytes, cfg.Avatar.Size)

	// --- Live feed ---
	hub := live.NewHub(log.With("component", "live"))
	go hub.Run(ctx)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	messageRepo := repository.NewMessageRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)

	// --- Initialize Services ---
	sessions := service.NewSessionManager(sessionRepo, utils.NewSessionSigner(cfg.Session.Secret), cfg.Session.TTL, service.WithLiveDisconnect(hub))
	authService := service.NewAuthService(userRepo, sessions, cfg.InitialAdminUsername, log)
	messageService := service.NewMessageService(messageRepo, userRepo, live.NewHubNotifier(hub), log)
	adminService := service.NewAdminService(userRepo, sessions, avatars, log)
	profileService := service.NewProfileService(userRepo, sessions, fetcher, avatars, log)

	go purgeSessions(ctx, sessions, cfg.Session.GCInterval, log)

	// --- Initialize Handlers ---
	cookie := handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}
	authHandler := handler.NewAuthHandler(authService, cookie, log)
	messageHandler := handler.NewMessageHandler(messageService, log)
	adminHandler := handler.NewAdminHandler(adminService, log)
	profileHandler := handler.NewProfileHandler(profileService, cookie, log)
	avatarHandler := handler.NewAvatarHandler(avatars, log)

	// --- Setup Gin Router ---
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	applyTrustedProxies(router, cfg.Server.TrustedProxies, log)
	router.Use(middleware.RequestLogger(log), gin.Recovery(), cors(cfg.Server.AllowedOrigins))

	// --- Initialize Middlewares ---
	authMW := middleware.SessionAuthMiddleware(authService, cfg.Session.CookieName, log)
	adminMW := middleware.AdminMiddleware(adminService, log)
	rateLimitMW := passThrough
	if cfg.RateLimit.Enabled {
		rateLimitMW = middleware.RateLimitMiddleware(newLimiter(ctx, cfg, log), log)
	}

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, authMW, rateLimitMW)
	messageHandler.RegisterMessageRoutes(apiGroup, authMW, live.ServeWS(hub, cfg.Server.AllowedOrigins))
	adminHandler.RegisterAdminRoutes(apiGroup, authMW, adminMW)
	profileHandler.RegisterProfileRoutes(apiGroup, authMW)
	avatarHandler.RegisterAvatarRoutes(router, strings.TrimSuffix(path.Clean(cfg.Avatar.URLPrefix), "/"))
	router.GET("/health", handler.Health(dbPool))

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exiting")
}

func newAvatarStore(ctx context.Context, cfg *config.Config) (avatar.Store, error) {
	if cfg.Avatar.Backend != "minio" {
		return avatar.NewLocalStore(cfg.Avatar.Dir, cfg.Avatar.URLPrefix)
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return avatar.NewMinioStore(ctx, client, cfg.Minio.Bucket, cfg.Avatar.URLPrefix)
}

func newLimiter(ctx context.Context, cfg *config.Config, log *logger.Logger) middleware.Limiter {
	if !cfg.Redis.Enabled {
		return middleware.NewMemoryLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, rate limiting will fail open until it recovers", "addr", cfg.Redis.Addr, "error", err)
	}
	return middleware.NewRedisLimiter(client, cfg.Redis.Prefix, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// applyTrustedProxies limits whose X-Forwarded-For gin believes when resolving
// ClientIP. An empty or invalid list falls back to the socket peer address.
func applyTrustedProxies(r *gin.Engine, proxies []string, log *logger.Logger) {
	trusted := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p = strings.TrimSpace(p); p != "" {
			trusted = append(trusted, p)
		}
	}
	if len(trusted) == 0 {
		_ = r.SetTrustedProxies(nil)
		return
	}
	if err := r.SetTrustedProxies(trusted); err != nil {
		log.Warn("invalid trusted proxies, forwarded headers will be ignored", "proxies", trusted, "error", err)
		_ = r.SetTrustedProxies(nil)
	}
}

// purgeSessions removes expired session rows until ctx is done
func purgeSessions(ctx context.Context, sessions service.SessionManager, every time.Duration, log *logger.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.Warn("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("expired sessions purged", "count", n)
			}
		}
	}
}

// cors reflects allowed origins so that browsers send the session cookie
func cors(allowed []string) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allow[strings.TrimSpace(o)] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(allow, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originAllowed matches on the origin's host, the same form the websocket origin patterns use
func originAllowed(allow map[string]struct{}, origin string) bool {
	if _, ok := allow["*"]; ok {
		return true
	}
	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	_, ok := allow[host]
	return ok
}

func passThrough(c *gin.Context) { c.Next() }
