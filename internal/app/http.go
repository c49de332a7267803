package app

import (
	"context"

	"github.com/killerx1411/access-control-hub/internal/admin"
	"github.com/killerx1411/access-control-hub/internal/auth/credentials"
	"github.com/killerx1411/access-control-hub/internal/auth/handler"
	"github.com/killerx1411/access-control-hub/internal/auth/provider"
	"github.com/killerx1411/access-control-hub/internal/auth/provider/google"
	"github.com/killerx1411/access-control-hub/internal/auth/resolver"
	"github.com/killerx1411/access-control-hub/internal/config"
	"github.com/killerx1411/access-control-hub/internal/logger"
	"github.com/killerx1411/access-control-hub/internal/middleware"
	"github.com/killerx1411/access-control-hub/internal/projects"
	"github.com/killerx1411/access-control-hub/internal/rbac"
	"github.com/killerx1411/access-control-hub/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	credentialService := credentials.NewService(infra.DB)
	identityResolver := resolver.NewDBResolver(infra.DB)

	roleStore := rbac.NewSQLStore(infra.DB)
	roleResolver := rbac.NewStoreResolver(roleStore)

	var oauthProviders []provider.OAuthProvider
	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		oauthProviders = append(oauthProviders, googleProvider)
	} else {
		logger.Info("google oidc not configured, provider disabled", nil)
	}

	registry := provider.NewRegistry(oauthProviders...)

	authHandler := handler.NewHandler(
		credentialService,
		registry,
		identityResolver,
		sessionStore,
		roleResolver,
		cfg.SignedOutRedirectURL,
	)

	adminHandler := admin.NewHandler(admin.NewService(infra.DB, roleStore))
	projectHandler := projects.NewHandler(projects.NewSQLStore(infra.DB))

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(sessionStore))

	api.GET("/me", func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		c.JSON(200, gin.H{
			"user_id":      sess.UserID,
			"email":        sess.Email,
			"display_name": sess.DisplayName,
			"role":         sess.Role,
			"capabilities": rbac.CapabilitiesOf(sess.Role),
		})
	})

	projectHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		redisErr := infra.Redis.Close()
		if err := infra.DB.Close(); err != nil {
			return err
		}
		return redisErr
	}, nil
}
