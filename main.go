package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quillpress/blog-api/internal/category"
	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/database"
	"github.com/quillpress/blog-api/internal/oidc"
	postrepo "github.com/quillpress/blog-api/internal/post/repository"
	postservice "github.com/quillpress/blog-api/internal/post/service"
	"github.com/quillpress/blog-api/internal/sessions"
	"github.com/quillpress/blog-api/internal/tokens"
	"github.com/quillpress/blog-api/internal/users"
	"github.com/quillpress/blog-api/pkg/logger"
	"github.com/quillpress/blog-api/pkg/metrics"
	"github.com/quillpress/blog-api/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

const mongoConnectAttempts = 5

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetOutput(os.Stdout, cfg.Log.Pretty)
	logger.Init(cfg.Log.Level)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: env=%s keycloak=%v redis=%v", cfg.Server.Environment, cfg.Keycloak.URL != "", cfg.Redis.Addr() != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	logger.Infof("MongoDB connected (database=%s)", cfg.MongoDB.Database)
	db := client.Database(cfg.MongoDB.Database)

	postsRepo := postrepo.NewMongoRepo(db.Collection(database.PostsCollection))
	usersRepo := users.NewMongoUserRepository(db.Collection(database.UsersCollection))
	categoriesRepo := category.NewMongoRepo(db.Collection(database.CategoriesCollection))
	indexed := []interface{ EnsureIndexes(context.Context) error }{postsRepo, usersRepo, categoriesRepo}

	checks := map[string]readinessCheck{
		"mongo": func(ctx context.Context) error { return database.Ping(ctx, client) },
	}

	// Redis backs refresh sessions and the access-token blacklist when configured;
	// otherwise sessions live in MongoDB and logout cannot revoke access tokens early.
	var rc redis.UniversalClient
	if addr := cfg.Redis.Addr(); addr != "" {
		c := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = c.Close()
		} else {
			logger.Infof("Connected to Redis: %s", addr)
			defer func() { _ = c.Close() }()
			rc = c
			checks["redis"] = func(ctx context.Context) error { return c.Ping(ctx).Err() }
		}
	}
	var sessionRepo sessions.Repository
	if rc != nil {
		sessionRepo = sessions.NewRedisRepository(rc, "session:")
	} else {
		mrepo := sessions.NewMongoRepository(db.Collection(database.SessionsCollection))
		indexed = append(indexed, mrepo)
		sessionRepo = mrepo
	}
	for _, r := range indexed {
		if err := r.EnsureIndexes(ctx); err != nil {
			logger.Fatalf("failed to create indexes: %v", err)
		}
	}

	verifiers := []middleware.Verifier{tokens.NewVerifier(cfg.JWT)}
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.Issuer(), cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			logger.Infof("accepting OIDC tokens from %s", cfg.Keycloak.Issuer())
			verifiers = append(verifiers, ver)
		}
	}

	userSvc := users.NewService(usersRepo, users.WithLocalIssuer(cfg.JWT.Issuer))
	categorySvc := category.NewService(categoriesRepo)
	a := &app{
		cfg:        cfg,
		posts:      postservice.NewService(postsRepo, userSvc, categorySvc),
		categories: categorySvc,
		users:      userSvc,
		sessions:   sessions.NewService(sessionRepo),
		blacklist:  sessions.NewBlacklist(rc),
		verifier:   middleware.Chain(verifiers...),
		checks:     checks,
		started:    time.Now(),
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      newRouter(a),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting blog API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
