package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ScalpPulse/internal/domain/models"
	drepo "ScalpPulse/internal/domain/repository"
	icache "ScalpPulse/internal/service/cache"
	"ScalpPulse/internal/service/metrics"
	"ScalpPulse/internal/service/ratelimit"
	"ScalpPulse/internal/usecase"
	xhttp "ScalpPulse/pkg/http"
	xlogger "ScalpPulse/pkg/logger"
)

// scalpCacheTTL is deliberately short: a scalp result goes stale with
// the next quote.
const scalpCacheTTL = 5 * time.Second

// ScalpHandler serves the scalp pipeline and signal history over Echo.
type ScalpHandler struct {
	logger  *xlogger.Logger
	uc      *usecase.ScalpUseCase
	history *usecase.SignalHistory
	hub     *Hub
	rl      *ratelimit.Limiter
	cache   icache.BytesCache
	archive drepo.SignalArchive
}

func NewScalpHandler(logger *xlogger.Logger, uc *usecase.ScalpUseCase, history *usecase.SignalHistory, hub *Hub) *ScalpHandler {
	metrics.Register()
	return &ScalpHandler{
		logger:  logger,
		uc:      uc,
		history: history,
		hub:     hub,
		rl:      ratelimit.New(),
	}
}

// SetCache injects a response cache for the scalp endpoint.
func (h *ScalpHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetArchive injects the archive for health reporting.
func (h *ScalpHandler) SetArchive(a drepo.SignalArchive) { h.archive = a }

func (h *ScalpHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/scalp", h.Scalp)
	g.GET("/signals/recent", h.RecentSignals)
	g.GET("/health", h.Health)
	if h.hub != nil {
		e.GET("/ws/signals", h.hub.Stream)
	}
}

// Scalp runs the pipeline for one ticker (or the watchlist when the
// ticker is omitted) and returns the result envelope. Pipeline failures
// surface as NO_SIGNAL, never as HTTP errors.
func (h *ScalpHandler) Scalp(c echo.Context) error {
	start := time.Now()
	endpoint := "scalp"
	defer func() {
		metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req := &models.ScalpRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":scalp", 5, 2) {
		h.logger.Warn("scalp rate_limited", xlogger.String("remote", c.RealIP()))
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	cacheKey := "scalp:" + req.Ticker
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("scalp cache_get_error", xlogger.Error(err))
		} else if ok {
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	res, _ := h.uc.Run(c.Request().Context(), req.Ticker)

	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, scalpCacheTTL); err != nil {
				h.logger.Warn("scalp cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// RecentSignals returns the journal (or archive) tail.
func (h *ScalpHandler) RecentSignals(c echo.Context) error {
	req := &models.RecentSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	since := xhttp.ParseTimeDefault(req.Since, time.Time{})
	entries, err := h.history.Recent(c.Request().Context(), req.Source, req.Ticker, req.Limit, since)
	if err != nil {
		h.logger.Error("recent signals error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// componentHealth is one named check in the health report.
type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health reports per-component status plus recent aggregated errors.
// Always 200; degraded components are data, not transport failures.
func (h *ScalpHandler) Health(c echo.Context) error {
	components := map[string]componentHealth{}

	if _, err := h.history.Recent(c.Request().Context(), "journal", "", 1, time.Time{}); err != nil {
		components["journal"] = componentHealth{Status: "degraded", Error: err.Error()}
	} else {
		components["journal"] = componentHealth{Status: "ok"}
	}

	if h.archive != nil {
		if err := h.archive.Health(c.Request().Context()); err != nil {
			components["archive"] = componentHealth{Status: "degraded", Error: err.Error()}
		} else {
			components["archive"] = componentHealth{Status: "ok"}
		}
	}

	if h.hub != nil {
		components["ws_feed"] = componentHealth{Status: "ok"}
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":        overallStatus(components),
		"components":    components,
		"recent_errors": h.logger.RecentErrors(),
		"timestamp":     time.Now().UTC(),
	})
}

func overallStatus(components map[string]componentHealth) string {
	for _, ch := range components {
		if ch.Status != "ok" {
			return "degraded"
		}
	}
	return "ok"
}

var _ xhttp.Handler = (*ScalpHandler)(nil)
