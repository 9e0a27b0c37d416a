package handlers

import (
	"errors"
	"net/http"

	"chefdispatch/services/dispatch"
	"chefdispatch/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NegotiationHandler exposes the customer response side of negotiations.
type NegotiationHandler struct {
	Negotiation dispatch.NegotiationService
	Logger      *zap.Logger
}

// NewNegotiationHandler creates a NegotiationHandler.
func NewNegotiationHandler(svc dispatch.NegotiationService, logger *zap.Logger) *NegotiationHandler {
	return &NegotiationHandler{Negotiation: svc, Logger: logger}
}

// GetNegotiation returns the current state of a negotiation.
func (h *NegotiationHandler) GetNegotiation(c *gin.Context) {
	id := c.Param("id")
	req, err := h.Negotiation.Get(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "negotiation not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, req)
}

// RespondToNegotiation records the customer's accept/reject decision.
func (h *NegotiationHandler) RespondToNegotiation(c *gin.Context) {
	id := c.Param("id")
	var input struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	req, err := h.Negotiation.Respond(c.Request.Context(), id, input.Accept)
	if err != nil {
		var resolved *dispatch.NegotiationResolvedError
		if errors.As(err, &resolved) {
			utils.JSONError(c, http.StatusConflict, "negotiation already resolved", resolved.Status)
			return
		}
		h.Logger.Warn("negotiation response failed", zap.String("negotiationId", id), zap.Error(err))
		utils.JSONError(c, http.StatusUnprocessableEntity, "could not record response", err.Error())
		return
	}

	c.JSON(http.StatusOK, req)
}
