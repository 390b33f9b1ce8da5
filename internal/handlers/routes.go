package handlers

import (
	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/chachabrian/hilot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps is everything the HTTP layer needs. Hub, Docs and Codes may be nil;
// without Codes guest accounts cannot be claimed.
type Deps struct {
	Bookings  *booking.Service
	Repo      repository.Repository
	Hub       *services.Hub
	Docs      booking.DocumentStore
	Codes     CodeSender
	JWTSecret string
	Log       *logrus.Logger
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(d.JWTSecret)
	opsOnly := middleware.RequireRole(models.RoleOps, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")
	{
		api.POST("/auth/register", Register(d.Repo, d.Codes, d.JWTSecret, d.Log))
		api.POST("/auth/login", Login(d.Repo, d.JWTSecret, d.Log))

		users := api.Group("/users", auth)
		{
			users.GET("/profile", GetProfile(d.Repo, d.Log))
			users.PUT("/profile", UpdateProfile(d.Repo, d.Log))
			users.POST("/fcm-token", RegisterFCMToken(d.Repo, d.Log))
			users.DELETE("/fcm-token", RemoveFCMToken(d.Repo, d.Log))
		}

		api.GET("/services", ListServices(d.Bookings, d.Log))
		api.GET("/therapists", ListTherapists(d.Bookings, d.Log))
		api.POST("/therapists/apply", auth, ApplyTherapist(d.Bookings, d.Docs, d.Log))

		api.POST("/checkout", Checkout(d.Bookings, d.Log))
		api.POST("/payments/webhook", PaymentWebhook(d.Bookings, d.Log))

		bookings := api.Group("/bookings")
		{
			bookings.GET("/mine", auth, MyBookings(d.Bookings, d.Log))
			bookings.GET("/:id", GetBooking(d.Bookings, d.Log))
			bookings.POST("/:id/cancel", CancelBooking(d.Bookings, d.Log))
			bookings.POST("/:id/events", middleware.OptionalAuth(d.JWTSecret), AppendEvent(d.Bookings, d.Log))
			bookings.GET("/:id/events", ListEvents(d.Bookings, d.Log))
		}

		api.GET("/ops/active-bookings", auth, opsOnly, ActiveBookings(d.Bookings, d.Log))

		admin := api.Group("/admin", auth, adminOnly)
		{
			admin.GET("/therapists/pending", PendingTherapists(d.Bookings, d.Log))
			admin.POST("/therapists/:id/approve", ReviewTherapist(d.Bookings, true, d.Log))
			admin.POST("/therapists/:id/reject", ReviewTherapist(d.Bookings, false, d.Log))
		}

		if d.Hub != nil {
			api.GET("/ws", auth, opsOnly, WebSocketHandler(d.Hub))
		}
	}
}
