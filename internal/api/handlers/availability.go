package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"precio-luz/internal/poller"
	"precio-luz/internal/prices"
)

// AvailabilityHandler answers "are tomorrow's prices out yet?".
type AvailabilityHandler struct {
	svc *prices.Service
}

func NewAvailabilityHandler(svc *prices.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// TomorrowAvailability handles GET /api/v1/tomorrow-availability.
func (h *AvailabilityHandler) TomorrowAvailability(c *gin.Context) {
	c.JSON(http.StatusOK, poller.CheckTomorrow(c.Request.Context(), h.svc))
}
