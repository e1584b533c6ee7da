package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/view"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	categoryUC "github.com/fastygo/tasktracker/usecase/category"
)

type CategoryHandler struct {
	baseHandler
	uc *categoryUC.UseCase
}

func NewCategoryHandler(uc *categoryUC.UseCase, adapter *httpcontext.Adapter, views *view.Renderer, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: newBaseHandler(adapter, views, logger),
		uc:          uc,
	}
}

func (h *CategoryHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.uc.List(stdCtx)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	h.render(ctx, http.StatusOK, view.Categories, view.Page{Title: "Categories", Data: categories})
}

func (h *CategoryHandler) Add(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.PostArgs()
	if _, err := h.uc.Add(stdCtx, string(args.Peek("name")), string(args.Peek("color"))); err != nil {
		h.fail(ctx, stdCtx, err, "/categories")
		return
	}
	h.redirectWith(ctx, "/categories", flashSuccess, "Category added successfully!")
}

func (h *CategoryHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if id, ok := pathID(ctx, "id"); ok {
		if err := h.uc.Delete(stdCtx, id); err != nil {
			h.fail(ctx, stdCtx, err, "/categories")
			return
		}
	}
	h.redirectWith(ctx, "/categories", flashInfo, "Category deleted!")
}
