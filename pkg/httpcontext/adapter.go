package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeySessionID  Key = "session_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if sid := SessionID(ctx); sid != "" {
		stdCtx = context.WithValue(stdCtx, KeySessionID, sid)
	}

	return stdCtx, cancel
}

// SetSessionID marks the request as authenticated by the given session.
func SetSessionID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(string(KeySessionID), id)
}

// SessionID returns the session that authenticated the request, if any.
func SessionID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.UserValue(string(KeySessionID)).(string)
	return id
}

// RequestID returns the inbound X-Request-ID or a fresh one, memoized per request.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue("request_id").(string); ok {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue("request_id", id)
	return id
}
