package router

import (
	"github.com/gin-gonic/gin"

	"github.com/easyhome-app/easyhome-backend/internal/config"
	"github.com/easyhome-app/easyhome-backend/internal/http/handlers"
	"github.com/easyhome-app/easyhome-backend/internal/http/middleware"
	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/service"
)

// SetupRouter arma el árbol de rutas de la aplicación.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	engagementHandler *handlers.EngagementHandler,
	reviewHandler *handlers.ReviewHandler,
	reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler,
	providerHandler *handlers.ProviderHandler,
	listingHandler *handlers.ListingHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Rutas públicas
	api.GET("/ws", wsHandler.Handle)
	api.GET("/providers/:id", middleware.UUIDValidator("id"), providerHandler.GetProfile)
	api.GET("/providers/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListByProvider)
	api.GET("/providers/:id/listings", middleware.UUIDValidator("id"), listingHandler.ListByProvider)
	api.GET("/listings/:id", middleware.UUIDValidator("id"), listingHandler.Get)

	// Suscripciones solo si la pasarela de pago está configurada. El
	// webhook se autentica por firma, no por token.
	if subscriptionHandler != nil {
		api.GET("/subscriptions/plans", subscriptionHandler.ListPlans)
		api.POST("/subscriptions/webhook", subscriptionHandler.Webhook)
	}

	// Rutas protegidas
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", authHandler.Me)
		protected.PUT("/profile/photo", authHandler.UpdatePhoto)

		protected.POST("/engagements", engagementHandler.Contact)
		protected.GET("/engagements/my", engagementHandler.ListMine)
		protected.GET("/engagements/active", engagementHandler.ListActive)
		protected.GET("/engagements/history", engagementHandler.ListHistory)
		protected.GET("/engagements/:id", middleware.UUIDValidator("id"), engagementHandler.Get)
		protected.POST("/engagements/:id/hire-outcome", middleware.UUIDValidator("id"), engagementHandler.RecordHireOutcome)
		protected.POST("/engagements/:id/start", middleware.UUIDValidator("id"), engagementHandler.StartWork)
		protected.POST("/engagements/:id/finalize", middleware.UUIDValidator("id"), engagementHandler.Finalize)
		protected.POST("/engagements/:id/cancel", middleware.UUIDValidator("id"), engagementHandler.Cancel)
		protected.POST("/engagements/:id/confirm", middleware.UUIDValidator("id"), engagementHandler.ConfirmFinalized)

		protected.POST("/engagements/:id/review", middleware.UUIDValidator("id"), reviewHandler.Submit)
		protected.GET("/engagements/:id/review", middleware.UUIDValidator("id"), reviewHandler.GetByEngagement)

		protected.POST("/reports", reportHandler.File)
		protected.GET("/reports", reportHandler.ListMine)
		protected.GET("/reports/:id", middleware.UUIDValidator("id"), reportHandler.Get)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)

		protected.POST("/providers/apply", providerHandler.Apply)

		protected.POST("/listings", listingHandler.Create)
		protected.DELETE("/listings/:id", middleware.UUIDValidator("id"), listingHandler.Deactivate)

		if subscriptionHandler != nil {
			protected.POST("/subscriptions", subscriptionHandler.Subscribe)
		}
	}

	// Rutas administrativas
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/applications", providerHandler.ListApplications)
		admin.PUT("/applications/:id/approve", middleware.UUIDValidator("id"), providerHandler.Approve)
		admin.PUT("/applications/:id/reject", middleware.UUIDValidator("id"), providerHandler.Reject)

		admin.GET("/reports", reportHandler.ListByStatus)
		admin.PUT("/reports/:id/resolve", middleware.UUIDValidator("id"), reportHandler.Resolve)
	}

	return r
}
