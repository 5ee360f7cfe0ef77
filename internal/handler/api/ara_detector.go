package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"AraDetector/internal/domain/models"
	domrepo "AraDetector/internal/domain/repository"
	xhttp "AraDetector/pkg/http"
	"AraDetector/pkg/http/middleware"
	xlogger "AraDetector/pkg/logger"
)

type Evaluator interface {
	Evaluate(ctx context.Context, instrument, date string) (models.ScoreResult, error)
}

type Scanner interface {
	Scan(ctx context.Context, date string) (*models.ScanReport, error)
	Today() string
}

type ResultsReader interface {
	Query(ctx context.Context, filter domrepo.ResultFilter) ([]models.ScoreResult, error)
	Health(ctx context.Context) error
}

// AraDetectorHandler serves the screener endpoints.
type AraDetectorHandler struct {
	logger    *xlogger.Logger
	evaluator Evaluator
	scanner   Scanner
	results   ResultsReader
	limiter   middleware.Allower
}

func NewAraDetectorHandler(logger *xlogger.Logger, ev Evaluator, sc Scanner, rr ResultsReader, limiter middleware.Allower) *AraDetectorHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AraDetectorHandler{logger: logger, evaluator: ev, scanner: sc, results: rr, limiter: limiter}
}

func (h *AraDetectorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/ara-detector", h.List)
	g.POST("/ara-detector", h.Evaluate, middleware.RateLimit(h.limiter))
	e.GET("/healthz", h.Health)
}

// List runs a watchlist scan when watchlist=true, otherwise returns stored results for a date.
func (h *AraDetectorHandler) List(c echo.Context) error {
	req := &models.ResultsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	if req.Watchlist {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			return xhttp.DataResponse(c, http.StatusTooManyRequests, nil)
		}
		report, err := h.scanner.Scan(ctx, "")
		if err != nil {
			h.logger.Error("watchlist scan error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.UpstreamError("watchlist unavailable").WithError(err))
		}
		return xhttp.SuccessResponse(c, report)
	}

	date := req.Date
	if date == "" {
		date = h.scanner.Today()
	}
	level, _ := models.ParseAlertLevel(req.AlertLevel)
	rows, err := h.results.Query(ctx, domrepo.ResultFilter{
		Date:       date,
		MinScore:   req.MinScore,
		AlertLevel: level,
		Limit:      req.Limit,
	})
	if err != nil {
		h.logger.Error("results query error", xlogger.String("date", date), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, models.ResultsPage{Date: date, Results: rows, Total: len(rows)})
}

// Evaluate scores one instrument on demand. The result is not persisted.
func (h *AraDetectorHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date := req.Date
	if date == "" {
		date = h.scanner.Today()
	}

	res, err := h.evaluator.Evaluate(c.Request().Context(), req.Code(), date)
	switch {
	case err == nil:
		return xhttp.SuccessResponse(c, res)
	case errors.Is(err, models.ErrInvalidInstrument):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, models.ErrSourceUnavailable):
		h.logger.Warn("evaluate upstream error", xlogger.String("instrument", req.Code()), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError(err.Error()).WithError(err))
	default:
		h.logger.Error("evaluate error", xlogger.String("instrument", req.Code()), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}

func (h *AraDetectorHandler) Health(c echo.Context) error {
	if err := h.results.Health(c.Request().Context()); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("result store unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
