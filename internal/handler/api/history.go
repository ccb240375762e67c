package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	"ChartPull/internal/usecase"
	xhttp "ChartPull/pkg/http"
	xlogger "ChartPull/pkg/logger"
)

// HistoryEchoHandler serves the chart history protocol plus symbol lookup
// and health endpoints.
type HistoryEchoHandler struct {
	logger   *xlogger.Logger
	history  *usecase.HistoryUseCase
	candles  domrepo.CandleStore
	metadata domrepo.MetadataStore
}

func NewHistoryEchoHandler(
	logger *xlogger.Logger,
	history *usecase.HistoryUseCase,
	candles domrepo.CandleStore,
	metadata domrepo.MetadataStore,
) *HistoryEchoHandler {
	return &HistoryEchoHandler{logger: logger, history: history, candles: candles, metadata: metadata}
}

func (h *HistoryEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	g := e.Group("/api")
	g.GET("/history", h.History)
	g.GET("/symbols/:symbol", h.Symbol)
}

// History speaks the raw chart protocol: the body is always a chart-shape
// object, never the API envelope, so the charting client can parse failures
// the same way as successes.
func (h *HistoryEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorHistory("invalid request parameters"))
	}

	// Unix seconds or RFC3339 both bind; a missing "to" means "now".
	now := time.Now()
	res, err := h.history.GetHistory(c.Request().Context(), usecase.HistoryParams{
		Symbol:     req.Symbol,
		Resolution: req.Resolution,
		From:       xhttp.ParseTimeDefault(req.From, time.Unix(0, 0)).Unix(),
		To:         xhttp.ParseTimeDefault(req.To, now).Unix(),
		Countback:  xhttp.ParseIntDefault(req.Countback, 0),
	})
	if err != nil {
		var appErr *xhttp.AppError
		if errors.As(err, &appErr) && appErr.Status == http.StatusBadRequest {
			return c.JSON(http.StatusBadRequest, models.NewErrorHistory(appErr.Message))
		}
		h.logger.Error("history usecase error", xlogger.Error(err))
		return c.JSON(http.StatusInternalServerError, models.NewErrorHistory("internal error"))
	}

	hdr := c.Response().Header()
	for k, v := range res.Headers {
		hdr.Set(k, v)
	}
	return c.JSON(http.StatusOK, res.Body)
}

// Symbol resolves a display symbol to its catalog entry.
func (h *HistoryEchoHandler) Symbol(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	ent, err := h.metadata.ResolveSymbol(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return xhttp.NotFoundResponse(c, "unknown symbol")
		}
		h.logger.Error("symbol lookup error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, ent)
}

// Healthz pings both backing stores with a short deadline.
func (h *HistoryEchoHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"candles": "ok", "metadata": "ok"}
	healthy := true
	if err := h.candles.Health(ctx); err != nil {
		status["candles"] = err.Error()
		healthy = false
	}
	if err := h.metadata.Health(ctx); err != nil {
		status["metadata"] = err.Error()
		healthy = false
	}
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	return c.JSON(http.StatusOK, status)
}
