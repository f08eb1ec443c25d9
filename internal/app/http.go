package app

import (
	"context"

	"startosedge/internal/admin"
	"startosedge/internal/config"
	"startosedge/internal/course"
	"startosedge/internal/guard"
	"startosedge/internal/identity"
	"startosedge/internal/identity/credentials"
	identityhandler "startosedge/internal/identity/handler"
	"startosedge/internal/identity/provider"
	"startosedge/internal/identity/provider/google"
	"startosedge/internal/logger"
	"startosedge/internal/mailer"
	"startosedge/internal/middleware"
	"startosedge/internal/profile"
	"startosedge/internal/session"
	"startosedge/internal/sessionstate"

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
	identityStore := identity.NewStore(infra.DB)
	identityResolver := identity.NewDBResolver(infra.DB)
	verificationStore := identity.NewVerificationStore(infra.Redis.Client)
	credentialService := credentials.NewService(infra.DB)

	profileStore := profile.NewPGStore(infra.DB)
	courseStore := course.NewPGStore(infra.DB)

	feed := identity.NewFeed()
	sessionResolver := sessionstate.NewResolver(profileStore, sessionStore)
	watcher := sessionstate.Watch(ctx, sessionResolver, feed)

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.Mail.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(cfg.Mail.ResendAPIKey, cfg.Mail.FromAddress)
	} else {
		logger.Warn("no resend api key configured, verification mail disabled", nil)
	}

	googleProvider, err := google.New(
		ctx,
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
	)
	if err != nil {
		logger.Warn("google oauth disabled", map[string]any{
			"error": err.Error(),
		})
	}

	var registry *provider.Registry
	if googleProvider != nil {
		registry = provider.NewRegistry(googleProvider)
	} else {
		registry = provider.NewRegistry()
	}

	authHandler := identityhandler.NewHandler(
		registry,
		sessionStore,
		identityResolver,
		credentialService,
		identityStore,
		verificationStore,
		sessionResolver,
		profileStore,
		feed,
		mail,
		cfg.BaseURL,
	)

	adminService := admin.NewService(
		profileStore,
		courseStore,
		identityStore,
		sessionStore,
		sessionResolver,
	)
	adminHandler := admin.NewHandler(adminService)

	profileHandler := profile.NewHandler(profileStore, func(c *gin.Context) (string, bool) {
		s := middleware.SessionFromContext(c)
		return s.Identity.UserID, s.Authenticated
	})
	courseHandler := course.NewHandler(courseStore)

	authMiddleware := middleware.NewAuth(sessionStore, identityStore, sessionResolver)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)
	courseHandler.RegisterPublic(router)

	// Live navigation decisions for pages: the gate stream follows
	// sign-ins and sign-outs, so the login page itself must be able to
	// connect. No auth gate on this route.
	guard.NewStream(watcher).Register(router.Group("/api"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(authMiddleware.ResolveSession(), middleware.RequireAuth())

	api.GET("/me", func(c *gin.Context) {
		s := middleware.SessionFromContext(c)
		c.JSON(200, gin.H{
			"user_id":          s.Identity.UserID,
			"email":            s.Identity.Email,
			"profile_complete": s.ProfileComplete,
			"is_admin":         s.IsAdmin,
		})
	})

	profileHandler.RegisterRoutes(api)
	courseHandler.RegisterProtected(api)

	// ----------------------------
	// Protected Web Routes
	// ----------------------------

	web := router.Group("/")
	web.Use(authMiddleware.ResolveSession(), middleware.RequirePage())

	web.GET("/dashboard", func(c *gin.Context) {
		c.File("./web/dashboard.html")
	})
	web.GET("/profile", func(c *gin.Context) {
		c.File("./web/profile.html")
	})

	// ----------------------------
	// Admin Console Routes
	// ----------------------------

	adminAPI := router.Group("/api/admin")
	adminAPI.Use(authMiddleware.ResolveSession(), middleware.RequireAdmin())
	adminHandler.RegisterRoutes(adminAPI)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		watcher.Close()
		feed.Close()
		if err := infra.Redis.Close(); err != nil {
			logger.Warn("redis close failed", map[string]any{"error": err.Error()})
		}
		return infra.DB.Close()
	}, nil
}
