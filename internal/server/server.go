package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/auth"
	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/handlers"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/middleware"
	"github.com/gravadigital/giftlist-api/internal/services"
)

// HealthChecker reports whether the storage backend is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	services   *services.Services
	issuer     *auth.Issuer
	health     HealthChecker
}

// New creates a new server instance
func New(cfg *config.Config, svc *services.Services, issuer *auth.Issuer, health HealthChecker) *Server {
	return &Server{
		config:   cfg,
		services: svc,
		issuer:   issuer,
		health:   health,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: s.Router(),

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if s.config.Server.GinMode != "" {
		gin.SetMode(s.config.Server.GinMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	origins := config.SplitCSV(s.config.CORS.AllowOrigins)
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = config.SplitCSV(s.config.CORS.AllowMethods)
	corsConfig.AllowHeaders = config.SplitCSV(s.config.CORS.AllowHeaders)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.MaxMultipartMemory = s.config.Upload.MaxFileSize

	router.GET("/ping", s.ping)

	s.setupAPIRoutes(router)

	return router
}

func (s *Server) ping(c *gin.Context) {
	if s.health != nil {
		if err := s.health.Health(c.Request.Context()); err != nil {
			logger.HTTP().Error("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"message": "Storage is unavailable",
				"status":  "unhealthy",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Giftlist API is running",
		"status":  "healthy",
	})
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(router *gin.Engine) {
	sessionHandler := handlers.NewSessionHandler(s.services.Users, s.issuer, s.config.Auth.AllowDevLogin)
	userHandler := handlers.NewUserHandler(s.services.Users)
	listHandler := handlers.NewListHandler(s.services.Lists)
	draftHandler := handlers.NewDraftHandler(s.services.Drafts)
	paymentHandler := handlers.NewPaymentHandler(s.services.Payments)
	publicHandler := handlers.NewPublicHandler(s.services.Lists)

	requireSession := middleware.RequireSession(s.issuer)

	api := router.Group("/api")
	{
		session := api.Group("/session")
		{
			session.POST("/guest", sessionHandler.CreateGuest)
			session.POST("/user", sessionHandler.CreateUser)
		}

		public := api.Group("/public")
		{
			public.GET("/:email/:name", publicHandler.GetList)
			public.GET("/:email/:name/random", publicHandler.RandomItem)
		}

		users := api.Group("/users", requireSession)
		{
			users.POST("", userHandler.Register)
			users.GET("/me", userHandler.GetMe)
			users.DELETE("/me", userHandler.DeleteMe)
			users.POST("/guests/cleanup", userHandler.CleanupGuests)
		}

		lists := api.Group("/lists", requireSession)
		{
			lists.GET("", listHandler.GetAll)
			lists.POST("", listHandler.CreateOrAppend)
			lists.GET("/:name", listHandler.Get)
			lists.DELETE("/:name", listHandler.Delete)
			lists.DELETE("/:name/links", listHandler.RemoveLink)
			lists.DELETE("/:name/messages", listHandler.RemoveMessage)
			lists.GET("/:name/images", listHandler.GetImages)
			lists.POST("/:name/images", listHandler.UploadImage)
			lists.DELETE("/:name/images", listHandler.RemoveImage)

			lists.GET("/:name/draft", draftHandler.Get)
			lists.PUT("/:name/draft", draftHandler.Upsert)
			lists.POST("/:name/draft/images", draftHandler.AddImage)
			lists.DELETE("/:name/draft/images", draftHandler.RemoveImage)
			lists.DELETE("/:name/draft/links", draftHandler.RemoveLink)
			lists.DELETE("/:name/draft/messages", draftHandler.RemoveMessage)
		}

		payments := api.Group("/payments", requireSession)
		{
			payments.POST("/orders", paymentHandler.CreateOrder)
			payments.POST("/verify", paymentHandler.Verify)
			payments.POST("/failed", paymentHandler.Failed)
		}
	}
}
