package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/api/view"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/usecase/notify"
	settingsUC "github.com/fastygo/tasktracker/usecase/settings"
)

// ScanRunner triggers an immediate reminder scan.
type ScanRunner interface {
	RunNow(ctx context.Context) (notify.Result, error)
}

type SettingsHandler struct {
	baseHandler
	settings *settingsUC.UseCase
	notify   *notify.UseCase
	scans    ScanRunner
}

func NewSettingsHandler(
	settings *settingsUC.UseCase,
	notifier *notify.UseCase,
	scans ScanRunner,
	adapter *httpcontext.Adapter,
	views *view.Renderer,
	logger *zap.Logger,
) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, views, logger),
		settings:    settings,
		notify:      notifier,
		scans:       scans,
	}
}

func (h *SettingsHandler) Page(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	current, err := h.settings.Email(stdCtx)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	h.render(ctx, http.StatusOK, view.Settings, view.Page{Title: "Settings", Data: current})
}

func (h *SettingsHandler) Save(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	form := transport.ParseSettingsForm(ctx.PostArgs())
	if err := h.settings.SaveEmail(stdCtx, form.Settings(), form.KeepPassword); err != nil {
		h.fail(ctx, stdCtx, err, "/settings")
		return
	}
	h.redirectWith(ctx, "/settings", flashSuccess, "Settings saved!")
}

func (h *SettingsHandler) SendTest(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.notify.SendTest(stdCtx); err != nil {
		h.fail(ctx, stdCtx, err, "/settings")
		return
	}
	h.redirectWith(ctx, "/settings", flashSuccess, "Test email sent!")
}

func (h *SettingsHandler) NotifyNow(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.scans.RunNow(stdCtx)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/settings")
		return
	}
	if !result.Sent {
		h.redirectWith(ctx, "/settings", flashInfo, "No tasks due today need a reminder.")
		return
	}
	h.redirectWith(ctx, "/settings", flashSuccess, fmt.Sprintf("Reminder sent for %d task(s)!", len(result.Cohort)))
}
