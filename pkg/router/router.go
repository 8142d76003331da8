package router

import (
	"net/http"
	"os"

	"github.com/kiyo9w/Imacall-backend/internal/api"
	"github.com/kiyo9w/Imacall-backend/pkg/config"
	"github.com/kiyo9w/Imacall-backend/pkg/di"
	"github.com/kiyo9w/Imacall-backend/pkg/errors"
	"github.com/kiyo9w/Imacall-backend/pkg/health"
	"github.com/kiyo9w/Imacall-backend/pkg/jwt"
	"github.com/kiyo9w/Imacall-backend/pkg/logger"
	"github.com/kiyo9w/Imacall-backend/pkg/middleware"
	"github.com/kiyo9w/Imacall-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
	Health    *health.Checker
}

// New creates a new router over the given container
func New(container *di.Container, checker *health.Checker) *Router {
	logger.SetGlobal(container.Logger)

	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
		Health:    checker,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware())

	opts := middleware.DefaultRateLimiterOptions()
	opts.Limit = rate.Limit(r.Config.Security.RateLimit)
	opts.Burst = r.Config.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(r.Logger, opts)
	r.Engine.Use(rateLimiter.Middleware())

	// Validate requests against the OpenAPI schema when one is configured
	if schemaPath := os.Getenv("OPENAPI_SCHEMA_PATH"); schemaPath != "" {
		v, err := validator.NewOpenAPIValidator(schemaPath)
		if err != nil {
			r.Logger.Warn("Skipping OpenAPI validation", "error", err.Error())
		} else {
			r.Engine.Use(v.Middleware())
		}
	}

	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)
	adminOnly := middleware.RequireRole(jwt.RoleAdmin)

	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	characterHandler := api.NewCharacterHandler(r.Container.CharacterService, r.Logger)
	adminCharacterHandler := api.NewAdminCharacterHandler(r.Container.CharacterService, r.Logger)
	conversationHandler := api.NewConversationHandler(r.Container.ConversationService, r.Logger)
	providerConfigHandler := api.NewProviderConfigHandler(r.Container.Registry, r.Logger)
	wsHandler := api.NewWSHandler(r.Container.ConversationService, r.Logger)

	// Operational endpoints outside the API version prefix
	r.Engine.GET("/health", gin.WrapF(r.Health.HTTPHandler()))
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Engine.GET("/ws-health", api.WSHealthHandler)

	v1 := r.Engine.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", jwtAuth, authHandler.Me)
	}

	characterRoutes := v1.Group("/characters")
	{
		characterRoutes.GET("", characterHandler.List)
		characterRoutes.GET("/categories", characterHandler.Categories)

		characterRoutes.POST("/submit", jwtAuth, characterHandler.Submit)
		characterRoutes.GET("/my-submissions", jwtAuth, characterHandler.MySubmissions)
		characterRoutes.GET("/my-submissions/:id", jwtAuth, characterHandler.GetMySubmission)
		characterRoutes.PUT("/my-submissions/:id", jwtAuth, characterHandler.UpdateMySubmission)
		characterRoutes.DELETE("/my-submissions/:id", jwtAuth, characterHandler.DeleteMySubmission)

		// Registered last so it does not shadow the fixed paths above
		characterRoutes.GET("/:id", characterHandler.Get)
	}

	conversationRoutes := v1.Group("/conversations")
	conversationRoutes.Use(jwtAuth)
	{
		conversationRoutes.POST("", conversationHandler.Start)
		conversationRoutes.GET("", conversationHandler.List)
		conversationRoutes.GET("/:id/messages", conversationHandler.Messages)
		conversationRoutes.POST("/:id/messages", conversationHandler.SendMessage)
		conversationRoutes.DELETE("/:id", conversationHandler.Delete)
		conversationRoutes.GET("/ws/:id", wsHandler.Chat)
	}

	adminRoutes := v1.Group("/admin")
	adminRoutes.Use(jwtAuth, adminOnly)
	{
		adminCharacters := adminRoutes.Group("/characters")
		{
			adminCharacters.GET("", adminCharacterHandler.List)
			adminCharacters.GET("/pending", adminCharacterHandler.Pending)
			adminCharacters.GET("/:id", adminCharacterHandler.Get)
			adminCharacters.PUT("/:id", adminCharacterHandler.Update)
			adminCharacters.PATCH("/:id/approve", adminCharacterHandler.Approve)
			adminCharacters.PATCH("/:id/reject", adminCharacterHandler.Reject)
			adminCharacters.DELETE("/:id", adminCharacterHandler.Delete)
		}
	}

	configRoutes := v1.Group("/config")
	configRoutes.Use(jwtAuth, adminOnly)
	{
		configRoutes.GET("/ai/providers/available", providerConfigHandler.Available)
		configRoutes.GET("/ai/providers/active", providerConfigHandler.Active)
		configRoutes.PUT("/ai/providers/active", providerConfigHandler.SetActive)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
