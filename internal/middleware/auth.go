package middleware

import (
	"bytes"
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// Authenticator resolves a session token to its session and slides its expiry.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
	Renew(ctx context.Context, session *domain.Session) (string, bool, error)
}

// SessionAuth guards routes behind the password gate. Browser requests without
// a valid session are sent to /login; /api requests get 401. Sessions past half
// their lifetime get a fresh cookie.
func SessionAuth(auth Authenticator, cookie string, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := string(ctx.Request.Header.Cookie(cookie))
			if token == "" {
				reject(ctx)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			session, err := auth.Authenticate(stdCtx, token)
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Warn("session lookup failed", zap.Error(err))
				}
				reject(ctx)
				return
			}

			fresh, renewed, err := auth.Renew(stdCtx, session)
			switch {
			case err != nil:
				logger.Warn("session renewal failed", zap.String("session_id", session.ID), zap.Error(err))
			case renewed:
				setSessionCookie(ctx, cookie, fresh, time.Until(session.ExpiresAt))
			}

			httpcontext.SetSessionID(ctx, session.ID)
			next(ctx)
		}
	}
}

func setSessionCookie(ctx *fasthttp.RequestCtx, name, value string, ttl time.Duration) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetMaxAge(int(ttl.Seconds()))
	ctx.Response.Header.SetCookie(c)
}

func reject(ctx *fasthttp.RequestCtx) {
	if bytes.HasPrefix(ctx.Path(), []byte("/api/")) {
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBody(transport.Failure(string(domain.ErrCodeUnauthorized), "login required", nil).Bytes())
		return
	}
	ctx.Response.Header.Set("Location", "/login")
	ctx.SetStatusCode(fasthttp.StatusFound)
}
