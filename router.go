package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quillpress/blog-api/handlers"
	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/category"
	"github.com/quillpress/blog-api/internal/config"
	posthandler "github.com/quillpress/blog-api/internal/post/handler"
	postservice "github.com/quillpress/blog-api/internal/post/service"
	"github.com/quillpress/blog-api/internal/sessions"
	"github.com/quillpress/blog-api/internal/users"
	"github.com/quillpress/blog-api/pkg/middleware"
)

// readinessCheck reports an error when a dependency cannot serve requests.
type readinessCheck func(ctx context.Context) error

// app carries the wired services the router exposes.
type app struct {
	cfg        *config.Config
	posts      postservice.Service
	categories *category.Service
	users      *users.Service
	sessions   *sessions.Service
	blacklist  *sessions.Blacklist
	verifier   middleware.Verifier
	checks     map[string]readinessCheck
	started    time.Time
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), apierr.Recovery(), middleware.CORS(a.cfg.CORS.AllowedOrigins), apierr.Handler())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the blog API"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": time.Since(a.started).Seconds()})
	})
	// readiness endpoint: 200 only when every dependency answers
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}
		for name, check := range a.checks {
			ok := check(c.Request.Context()) == nil
			deps[name] = ok
			ready = ready && ok
		}
		status, label := http.StatusOK, "ready"
		if !ready {
			status, label = http.StatusServiceUnavailable, "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	auth := middleware.AuthMiddleware(a.verifier, a.users, middleware.WithRevocations(a.blacklist))
	api := r.Group("/api")
	handlers.NewAuthHandler(a.cfg.JWT, a.users, a.sessions, a.blacklist).Register(api, auth)
	category.RegisterRoutes(api.Group("/categories"), a.categories, auth)
	posthandler.RegisterPostRoutes(api.Group("/posts"), a.posts, auth)

	r.NoRoute(apierr.NoRoute)
	return r
}
