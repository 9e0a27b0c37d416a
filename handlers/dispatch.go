package handlers

import (
	"net/http"
	"time"

	"chefdispatch/services/dispatch"
	"chefdispatch/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DispatchHandler exposes the scheduling flow over HTTP.
type DispatchHandler struct {
	Dispatch     dispatch.DispatchService
	Availability *dispatch.AvailabilityEngine
	Slots        *dispatch.SlotManager
	Logger       *zap.Logger
}

// NewDispatchHandler creates a DispatchHandler.
func NewDispatchHandler(svc dispatch.DispatchService, availability *dispatch.AvailabilityEngine, slots *dispatch.SlotManager, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{Dispatch: svc, Availability: availability, Slots: slots, Logger: logger}
}

// ScheduleBooking runs the full scheduling flow for a pending booking.
func (h *DispatchHandler) ScheduleBooking(c *gin.Context) {
	var req dispatch.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Dispatch.ScheduleBooking(c.Request.Context(), req)
	if err != nil {
		h.Logger.Warn("scheduling failed", zap.String("bookingId", req.BookingID), zap.Error(err))
		utils.JSONError(c, http.StatusUnprocessableEntity, "scheduling failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAvailability lists candidate chefs for a date and slot.
func (h *DispatchHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	slotName := c.Query("slot")
	if date == "" || slotName == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date and slot query parameters are required")
		return
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date must be YYYY-MM-DD")
		return
	}
	slotTime, err := h.Slots.SlotStart(slotName, day)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid slot", err.Error())
		return
	}

	chefs, err := h.Availability.AvailableChefs(c.Request.Context(), date, slotTime)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "availability lookup failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date,
		"slot":  slotName,
		"chefs": chefs,
	})
}

// GetSlots returns the slot grid so clients can render valid options.
func (h *DispatchHandler) GetSlots(c *gin.Context) {
	var configs []any
	for _, name := range h.Slots.SlotNames() {
		cfg, err := h.Slots.SlotConfig(name)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	c.JSON(http.StatusOK, gin.H{"slots": configs})
}
