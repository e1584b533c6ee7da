package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// ScanClock exposes when the reminder scan last ran.
type ScanClock interface {
	LastScan() time.Time
}

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
	scans   ScanClock
}

func NewHealthHandler(mon *monitor.Monitor, scans ScanClock, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, nil, logger),
		monitor:     mon,
		scans:       scans,
	}
}

func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"database":      status.Database,
			"session_store": status.SessionStore,
		},
		"last_check": status.LastCheck,
	}
	if h.scans != nil {
		if last := h.scans.LastScan(); !last.IsZero() {
			payload["last_scan"] = last.UTC()
		}
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.Failure("DEGRADED", "dependencies unhealthy", payload))
}
