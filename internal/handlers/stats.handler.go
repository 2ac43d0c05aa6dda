package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/kaiteddy/garage-comms/internal/model"
	xhttp "github.com/kaiteddy/garage-comms/pkg/http"
)

type StatsService interface {
	Summary(ctx context.Context) (*model.CorrespondenceStats, error)
}

type StatsHandler struct {
	svc StatsService
}

func RegisterStatsRoutes(e *router.Group, h *StatsHandler) {
	e.GET("/communications/stats", h.GetStats)
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) GetStats(ctx *xhttp.RequestCtx) {
	stats, err := h.svc.Summary(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}
