package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"precio-luz/internal/api/models"
	"precio-luz/internal/dates"
	"precio-luz/internal/slug"
)

// SlugHandler resolves price-page URL segments.
type SlugHandler struct{}

func NewSlugHandler() *SlugHandler { return &SlugHandler{} }

// Resolve handles GET /api/v1/slug/:slug.
func (h *SlugHandler) Resolve(c *gin.Context) {
	raw := c.Param("slug")
	parsed := slug.Parse(raw)
	if parsed == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UNKNOWN_SLUG",
				Message: fmt.Sprintf("%q does not name a price page", raw),
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.SlugResponse{
		Parsed:      *parsed,
		PreviousDay: slug.PreviousDay(parsed.DateISO),
		NextDay:     slug.NextDay(parsed.DateISO),
	})
}

// Encode handles GET /api/v1/slug?date=YYYY-MM-DD.
func (h *SlugHandler) Encode(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = dates.Today()
	}
	s := slug.Make(date)
	if s == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", date),
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.EncodeSlugResponse{
		DateISO:     date,
		Slug:        s,
		PreviousDay: slug.PreviousDay(date),
		NextDay:     slug.NextDay(date),
	})
}
