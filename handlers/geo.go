package handlers

import (
	"net/http"
	"strconv"
	"time"

	"chefdispatch/services/geo"
	"chefdispatch/services/travel"
	"chefdispatch/utils"

	"github.com/gin-gonic/gin"
)

// GeoHandler exposes dispatcher tooling: geocoding and travel-time lookups.
type GeoHandler struct {
	Geocoder geo.Geocoder
	Travel   travel.TravelTimeService
}

// NewGeoHandler creates a GeoHandler.
func NewGeoHandler(geocoder geo.Geocoder, travelSvc travel.TravelTimeService) *GeoHandler {
	return &GeoHandler{Geocoder: geocoder, Travel: travelSvc}
}

// GeocodeAddress resolves a free-text address to coordinates.
func (h *GeoHandler) GeocodeAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "Missing required query parameter: address")
		return
	}

	result, err := h.Geocoder.ResolveAddress(c.Request.Context(), address)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "geocoding failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTravelTime resolves a travel duration between two coordinate pairs.
func (h *GeoHandler) GetTravelTime(c *gin.Context) {
	originLat, err1 := strconv.ParseFloat(c.Query("originLat"), 64)
	originLng, err2 := strconv.ParseFloat(c.Query("originLng"), 64)
	destLat, err3 := strconv.ParseFloat(c.Query("destLat"), 64)
	destLng, err4 := strconv.ParseFloat(c.Query("destLng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input",
			"originLat, originLng, destLat and destLng must be valid coordinates")
		return
	}

	departure := time.Now()
	if raw := c.Query("departure"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "departure must be RFC3339")
			return
		}
		departure = parsed
	}

	estimate, err := h.Travel.Resolve(c.Request.Context(), originLat, originLng, destLat, destLng, departure)
	if err != nil {
		// Provider exhaustion means a human must supply the estimate.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Travel time could not be resolved automatically. Please call us.",
			"escalated": true,
		})
		return
	}

	c.JSON(http.StatusOK, estimate)
}
