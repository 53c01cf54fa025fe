package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homecare-backend/internal/config"
	"github.com/ignatzorin/homecare-backend/internal/http/handlers"
	"github.com/ignatzorin/homecare-backend/internal/http/middleware"
	"github.com/ignatzorin/homecare-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	professionalHandler *handlers.ProfessionalHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	proposalHandler *handlers.ProposalHandler,
	jobHandler *handlers.JobHandler,
	paymentHandler *handlers.PaymentHandler,
	cashOutHandler *handlers.CashOutHandler,
	chatHandler *handlers.ChatHandler,
	wsHandler *handlers.WSHandler,
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
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
		protectedAuth.DELETE("/sessions", authHandler.DeleteAllSessionsExcept)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/professionals", professionalHandler.List)
	api.GET("/professionals/:id", middleware.UUIDValidator("id"), professionalHandler.Get)
	api.GET("/professionals/:id/availabilities", middleware.UUIDValidator("id"), availabilityHandler.ListByProfessional)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.PUT("/profile", profileHandler.UpdateMe)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)
		protected.POST("/profile/customer", profileHandler.SaveCustomer)
		protected.POST("/profile/cards", profileHandler.AddCard)
		protected.POST("/profile/recipient", profileHandler.SaveRecipient)

		protected.POST("/professionals", professionalHandler.Create)
		protected.GET("/professionals/me", professionalHandler.GetMine)
		protected.PUT("/professionals/me", professionalHandler.Update)

		protected.POST("/availabilities", availabilityHandler.Create)
		protected.PUT("/availabilities/:id", middleware.UUIDValidator("id"), availabilityHandler.Update)
		protected.DELETE("/availabilities/:id", middleware.UUIDValidator("id"), availabilityHandler.Delete)

		protected.POST("/proposals", proposalHandler.Create)
		protected.GET("/proposals/my", proposalHandler.ListMine)
		protected.GET("/proposals/incoming", proposalHandler.ListIncoming)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
		protected.PUT("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Update)
		protected.DELETE("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Delete)
		protected.POST("/proposals/:id/accept", middleware.UUIDValidator("id"), proposalHandler.Accept)
		protected.POST("/proposals/:id/reject", middleware.UUIDValidator("id"), proposalHandler.Reject)
		protected.POST("/proposals/:id/counter", middleware.UUIDValidator("id"), proposalHandler.CreateCounter)
		protected.GET("/proposals/:id/counter", middleware.UUIDValidator("id"), proposalHandler.GetCounter)
		protected.PUT("/counter-proposals/:id", middleware.UUIDValidator("id"), proposalHandler.UpdateCounter)
		protected.DELETE("/counter-proposals/:id", middleware.UUIDValidator("id"), proposalHandler.DeleteCounter)
		protected.POST("/counter-proposals/:id/accept", middleware.UUIDValidator("id"), proposalHandler.AcceptCounter)
		protected.POST("/counter-proposals/:id/reject", middleware.UUIDValidator("id"), proposalHandler.RejectCounter)

		protected.GET("/jobs/my", jobHandler.ListMine)
		protected.GET("/jobs/incoming", jobHandler.ListIncoming)
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.Get)
		protected.POST("/jobs/:id/start", middleware.UUIDValidator("id"), jobHandler.Start)
		protected.POST("/jobs/:id/finish", middleware.UUIDValidator("id"), jobHandler.Finish)
		protected.DELETE("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.Delete)
		protected.POST("/jobs/:id/rating", middleware.UUIDValidator("id"), jobHandler.Rate)
		protected.GET("/jobs/:id/rating", middleware.UUIDValidator("id"), jobHandler.GetRating)

		protected.POST("/jobs/:id/payment", middleware.UUIDValidator("id"), paymentHandler.Pay)
		protected.GET("/jobs/:id/payment", middleware.UUIDValidator("id"), paymentHandler.Get)
		protected.GET("/payments/my", paymentHandler.ListMine)

		protected.GET("/cashouts/balance", cashOutHandler.Balance)
		protected.POST("/cashouts", cashOutHandler.Withdraw)
		protected.GET("/cashouts", cashOutHandler.ListMine)
		protected.POST("/cashouts/:id/retry", middleware.UUIDValidator("id"), cashOutHandler.Retry)
		protected.DELETE("/cashouts/:id", middleware.UUIDValidator("id"), cashOutHandler.Cancel)

		protected.POST("/jobs/:id/messages", middleware.UUIDValidator("id"), chatHandler.Send)
		protected.GET("/jobs/:id/messages", middleware.UUIDValidator("id"), chatHandler.History)
		protected.GET("/messages/unread/count", chatHandler.CountUnread)
	}

	return r
}
