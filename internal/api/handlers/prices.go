package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"precio-luz/internal/api/models"
	"precio-luz/internal/dates"
	"precio-luz/internal/fetch"
	"precio-luz/internal/metrics"
	"precio-luz/internal/prices"
)

// PricesHandler serves shaped day prices.
type PricesHandler struct {
	svc *prices.Service
}

func NewPricesHandler(svc *prices.Service) *PricesHandler {
	return &PricesHandler{svc: svc}
}

// GetPrices handles GET /api/v1/prices?date=YYYY-MM-DD.
// "hoy" and "manana" are accepted as date aliases; no date means today.
func (h *PricesHandler) GetPrices(c *gin.Context) {
	date := resolveDateParam(c.Query("date"))
	if date == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", c.Query("date")),
			},
		})
		return
	}
	h.respond(c, date, prices.Options{NoCache: c.Query("no_cache") == "1"})
}

// GetToday handles GET /api/v1/prices/today.
func (h *PricesHandler) GetToday(c *gin.Context) {
	h.respond(c, dates.Today(), prices.Options{})
}

// GetTomorrow handles GET /api/v1/prices/tomorrow. Tomorrow is always
// fetched fresh; its counts change minute to minute around publication.
func (h *PricesHandler) GetTomorrow(c *gin.Context) {
	h.respond(c, dates.Tomorrow(), prices.Options{NoCache: true})
}

func (h *PricesHandler) respond(c *gin.Context, date string, opts Options) {
	res := h.svc.GetPricesForDate(c.Request.Context(), date, opts)

	c.Header("X-Cache-Policy", string(res.Policy))
	if res.Completeness.Count != nil {
		c.Header("X-Completeness", fmt.Sprintf("%d/%d", *res.Completeness.Count, prices.ExpectedHours))
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", prices.RevalidateFor(date)))

	if !res.OK {
		status, code := upstreamError(res)
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    code,
				Message: res.Err().Error(),
				Details: map[string]interface{}{
					"date":            date,
					"upstream_status": res.Status,
					"kind":            string(res.Kind),
				},
			},
		})
		return
	}

	meta := metrics.Compute(res.Data.Data, res.Data.Date)
	c.JSON(http.StatusOK, models.DayResponse{
		Date:      res.Data.Date,
		Count:     res.Data.Count,
		Data:      res.Data.Data,
		Meta:      meta,
		Bars:      metrics.ToBarSeries(res.Data.Data),
		Policy:    res.Policy,
		Complete:  res.Completeness.IsComplete,
		ElapsedMs: res.ElapsedMs,
	})
}

// Options aliases prices.Options so handler signatures stay tidy.
type Options = prices.Options

func resolveDateParam(raw string) string {
	switch raw {
	case "", "hoy", "today":
		return dates.Today()
	case "manana", "tomorrow":
		return dates.Tomorrow()
	case "ayer", "yesterday":
		return dates.Yesterday()
	}
	if dates.IsValid(raw) {
		return raw
	}
	return ""
}

// upstreamError maps a failed fetch onto this API's status and error code.
// "No data for this date yet" (404) is kept distinct from "service
// unreachable" so clients can render the two differently.
func upstreamError(res *prices.DayResult) (int, string) {
	switch res.Kind {
	case fetch.KindNotFound:
		return http.StatusNotFound, "NO_DATA_FOR_DATE"
	case fetch.KindRateLimited:
		return http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED"
	case fetch.KindTimeout:
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case fetch.KindNetwork:
		return http.StatusBadGateway, "UPSTREAM_UNREACHABLE"
	case fetch.KindServerError:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	case fetch.KindMalformed:
		return http.StatusBadGateway, "MALFORMED_UPSTREAM_RESPONSE"
	}
	if res.Status >= 400 {
		return res.Status, "UPSTREAM_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
