package api

import (
	"time"

	"Aegis/internal/domain/models"
	domrepo "Aegis/internal/domain/repository"
	"Aegis/internal/usecase"
	xhttp "Aegis/pkg/http"
	xlogger "Aegis/pkg/logger"
	"Aegis/pkg/util"

	"github.com/labstack/echo/v4"
)

// RiskEchoHandler serves the assessment API.
type RiskEchoHandler struct {
	logger *xlogger.Logger
	cycle  *usecase.Cycle
	store  domrepo.ResultStore
}

func NewRiskEchoHandler(logger *xlogger.Logger, cycle *usecase.Cycle, store domrepo.ResultStore) *RiskEchoHandler {
	return &RiskEchoHandler{logger: logger, cycle: cycle, store: store}
}

func (h *RiskEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/risk")
	g.GET("/latest", h.Latest)
	g.GET("/history", h.History)
	g.POST("/run", h.Run)
	e.GET("/health", h.Health)
}

// Latest returns the most recently persisted score row.
func (h *RiskEchoHandler) Latest(c echo.Context) error {
	ctx := c.Request().Context()
	rows, err := h.store.RecentScores(ctx, time.Now().AddDate(0, 0, 1), 1)
	if err != nil {
		h.logger.Error("latest score query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(rows) == 0 {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundError("no assessments recorded yet"))
	}
	return xhttp.SuccessResponse(c, rows[0])
}

// History returns the trailing n score rows, most recent first.
func (h *RiskEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.store.RecentScores(c.Request().Context(), time.Now().AddDate(0, 0, 1), req.N)
	if err != nil {
		h.logger.Error("history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Run executes an assessment cycle on demand and returns the full result.
func (h *RiskEchoHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	asOf := util.PrevBusinessDay(time.Now().UTC())
	if req.AsOf != "" {
		asOf = util.ParseTimeDefault(req.AsOf, asOf)
	}

	a, err := h.cycle.Run(c.Request().Context(), asOf)
	if err != nil {
		h.logger.Error("on-demand cycle failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, a)
}

// Health reports store reachability.
func (h *RiskEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("store unreachable"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
