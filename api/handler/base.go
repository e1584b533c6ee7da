package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/api/view"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

const flashCookie = "tasktracker_flash"

// Flash kinds.
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashError   = "error"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	views   *view.Renderer
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, views *view.Renderer, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, views: views, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload.Bytes())
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.Success(data))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.Failure(code, message, nil))
}

// render writes an HTML page, consuming any pending flash messages.
func (h baseHandler) render(ctx *fasthttp.RequestCtx, status int, name string, page view.Page) {
	page.Flashes = append(takeFlashes(ctx), page.Flashes...)
	page.Authenticated = httpcontext.SessionID(ctx) != ""

	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(status)
	if err := h.views.Render(ctx, name, page); err != nil {
		h.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		ctx.ResetBody()
		ctx.Response.Header.SetContentType("text/plain; charset=utf-8")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("internal error")
	}
}

// fail reports an error the HTML way: expected conditions become a flash and
// a redirect, storage failures an error page.
func (h baseHandler) fail(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error, fallback string) {
	status, _ := mapError(err)
	if status == http.StatusInternalServerError {
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
		h.render(ctx, status, view.Error, view.Page{Title: "Error", Data: "The operation could not be completed. Please try again."})
		return
	}
	h.redirectWith(ctx, fallback, flashError, userMessage(err))
}

func (h baseHandler) redirectWith(ctx *fasthttp.RequestCtx, location, kind, message string) {
	if message != "" {
		addFlash(ctx, view.Flash{Kind: kind, Message: message})
	}
	redirect(ctx, location)
}

func redirect(ctx *fasthttp.RequestCtx, location string) {
	ctx.Response.Header.Set("Location", location)
	ctx.SetStatusCode(fasthttp.StatusFound)
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// userMessage is the outermost domain message, capitalized for display.
func userMessage(err error) string {
	var dErr *domain.Error
	if !errors.As(err, &dErr) || dErr.Message == "" {
		return "Something went wrong."
	}
	return strings.ToUpper(dErr.Message[:1]) + dErr.Message[1:] + "!"
}

func pathID(ctx *fasthttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func addFlash(ctx *fasthttp.RequestCtx, flash view.Flash) {
	flashes := append(readFlashes(ctx), flash)
	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	setCookie(ctx, flashCookie, base64.RawURLEncoding.EncodeToString(payload), 60)
	// Later reads in this request see the pending flashes too.
	ctx.Request.Header.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(payload))
}

func takeFlashes(ctx *fasthttp.RequestCtx) []view.Flash {
	flashes := readFlashes(ctx)
	if len(flashes) > 0 {
		clearCookie(ctx, flashCookie)
		ctx.Request.Header.DelCookie(flashCookie)
	}
	return flashes
}

func readFlashes(ctx *fasthttp.RequestCtx) []view.Flash {
	raw := ctx.Request.Header.Cookie(flashCookie)
	if len(raw) == 0 {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(string(raw))
	if err != nil {
		return nil
	}
	var flashes []view.Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}

func setCookie(ctx *fasthttp.RequestCtx, name, value string, maxAge int) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetMaxAge(maxAge)
	ctx.Response.Header.SetCookie(c)
}

func clearCookie(ctx *fasthttp.RequestCtx, name string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(name)
	c.SetValue("")
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(c)
}
