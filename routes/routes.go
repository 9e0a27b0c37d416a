package routes

import (
	"net/http"
	"time"

	"chefdispatch/handlers"
	"chefdispatch/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterDispatchRoutes sets up the endpoints for the scheduling engine.
func RegisterDispatchRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dispatch")
	{
		api.POST("/schedule", hb.Dispatch.ScheduleBooking)
		api.GET("/availability", hb.Dispatch.GetAvailability)
		api.GET("/slots", hb.Dispatch.GetSlots)
	}
}

// RegisterNegotiationRoutes registers customer-facing negotiation endpoints.
func RegisterNegotiationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/negotiations")
	{
		api.GET("/:id", hb.Negotiation.GetNegotiation)
		api.POST("/:id/respond", hb.Negotiation.RespondToNegotiation)
	}
}

// RegisterGeoRoutes registers dispatcher tooling endpoints.
func RegisterGeoRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/geo")
	{
		api.GET("/geocode", hb.Geo.GeocodeAddress)
		api.GET("/travel-time", hb.Geo.GetTravelTime)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterDispatchRoutes(r, hb)
	RegisterNegotiationRoutes(r, hb)
	RegisterGeoRoutes(r, hb)
	RegisterHealthRoute(r)
}
