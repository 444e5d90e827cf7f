package router

import (
	"github.com/gin-gonic/gin"

	"github.com/artisanhub/backend/internal/config"
	"github.com/artisanhub/backend/internal/http/handlers"
	"github.com/artisanhub/backend/internal/http/middleware"
	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	artisanHandler *handlers.ArtisanHandler,
	jobHandler *handlers.JobHandler,
	paymentHandler *handlers.PaymentHandler,
	disputeHandler *handlers.DisputeHandler,
	payoutHandler *handlers.PayoutHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
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

	// Public routes: browsing artisans and their availability needs no account,
	// and the gateway redirect arrives unauthenticated.
	api.GET("/artisans", artisanHandler.Browse)
	api.GET("/artisans/:id", middleware.UUIDValidator("id"), artisanHandler.GetArtisan)
	api.GET("/artisans/:id/busy-slots", middleware.UUIDValidator("id"), artisanHandler.ListBusySlots)
	api.GET("/payments/callback", paymentHandler.Callback)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/jobs", jobHandler.CreateBooking)
		protected.GET("/jobs/my", jobHandler.ListMyJobs)
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.GetJob)
		protected.PUT("/jobs/:id/status", middleware.UUIDValidator("id"), jobHandler.UpdateStatus)
		protected.GET("/jobs/:id/invoice", middleware.UUIDValidator("id"), jobHandler.GetInvoice)

		protected.POST("/payments/initialize", paymentHandler.Initialize)
		protected.GET("/payments/verify/:reference", paymentHandler.Verify)

		protected.POST("/jobs/:id/dispute", middleware.UUIDValidator("id"), disputeHandler.OpenDispute)
		protected.GET("/jobs/:id/dispute", middleware.UUIDValidator("id"), disputeHandler.GetJobDispute)
		protected.GET("/disputes", disputeHandler.ListMyDisputes)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
		protected.POST("/disputes/:id/evidence", middleware.UUIDValidator("id"), disputeHandler.AddEvidence)

		protected.POST("/busy-slots", artisanHandler.AddBusySlot)
		protected.DELETE("/busy-slots/:id", middleware.UUIDValidator("id"), artisanHandler.RemoveBusySlot)

		protected.POST("/payouts", payoutHandler.RequestPayout)
		protected.GET("/payouts", payoutHandler.ListMyPayouts)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.Resolve)
		admin.GET("/payouts/pending", payoutHandler.ListPending)
		admin.POST("/payouts/:id/complete", middleware.UUIDValidator("id"), payoutHandler.Complete)
		admin.POST("/payouts/:id/reject", middleware.UUIDValidator("id"), payoutHandler.Reject)
		admin.PUT("/artisans/:id/verify", middleware.UUIDValidator("id"), artisanHandler.SetVerified)
	}

	return r
}
