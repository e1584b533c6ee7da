package handler

import (
	"math/rand"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/view"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
)

// SessionCookie carries the signed session token.
const SessionCookie = "tasktracker_session"

var rejections = []string{
	"Nice try, but NOPE!",
	"Access denied, you sneaky thing!",
	"Wrong password, smarty pants!",
	"Back off, this ain't for you!",
	"Unauthorized access detected! Calling the cyber police!",
	"Password incorrect. Please try being me instead.",
	"Error 401: You're not worthy!",
	"Begone, password peasant!",
	"That's not the magic word, muggle!",
}

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, views *view.Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, views, logger),
		uc:          uc,
	}
}

func (h *AuthHandler) LoginPage(ctx *fasthttp.RequestCtx) {
	h.render(ctx, http.StatusOK, view.Login, view.Page{Title: "Login"})
}

func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, _, err := h.uc.Login(stdCtx, string(ctx.PostArgs().Peek("password")))
	if err != nil {
		status, _ := mapError(err)
		if status != http.StatusUnauthorized {
			h.fail(ctx, stdCtx, err, "/login")
			return
		}
		h.render(ctx, http.StatusUnauthorized, view.Login, view.Page{
			Title:   "Login",
			Flashes: []view.Flash{{Kind: flashError, Message: rejections[rand.Intn(len(rejections))]}},
		})
		return
	}

	setCookie(ctx, SessionCookie, token, int(h.uc.TTL().Seconds()))
	redirect(ctx, "/")
}

func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, string(ctx.Request.Header.Cookie(SessionCookie))); err != nil {
		h.logger.Warn("failed to revoke session", zap.Error(err))
	}
	clearCookie(ctx, SessionCookie)
	h.redirectWith(ctx, "/login", flashInfo, "See you later!")
}
