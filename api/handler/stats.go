package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/pkg/httpcontext"
	dashboardUC "github.com/fastygo/tasktracker/usecase/dashboard"
)

type StatsHandler struct {
	baseHandler
	uc *dashboardUC.UseCase
}

func NewStatsHandler(uc *dashboardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		baseHandler: newBaseHandler(adapter, nil, logger),
		uc:          uc,
	}
}

// TodoStats returns active todo counts per category and per priority.
func (h *StatsHandler) TodoStats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	report, err := h.uc.Statistics(stdCtx)
	if err != nil {
		h.logger.Error("failed to compute statistics", zap.Error(err))
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}
