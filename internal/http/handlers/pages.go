package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yengalvez/tour360/internal/http/middleware"
	"github.com/yengalvez/tour360/internal/http/render"
	"github.com/yengalvez/tour360/internal/modules/tours"
	"github.com/yengalvez/tour360/internal/shared/apperr"
)

const (
	msgPageNotFound     = "Página no encontrada"
	msgMethodNotAllowed = "Método no permitido"
)

type PagesHandler struct {
	svc *tours.Service
}

func NewPagesHandler(svc *tours.Service) *PagesHandler {
	return &PagesHandler{svc: svc}
}

// GET /
func (h *PagesHandler) Editor(c *gin.Context) {
	render.Component(c, http.StatusOK, render.EditorPage())
}

// GET /tours/:slug
func (h *PagesHandler) Viewer(c *gin.Context) {
	h.viewer(c, c.Param("slug"))
}

// GET /tours/:slug/:file
func (h *PagesHandler) Asset(c *gin.Context) {
	rc, contentType, size, err := h.svc.OpenAsset(c.Request.Context(), c.Param("slug"), c.Param("file"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=3600")
	c.DataFromReader(http.StatusOK, size, contentType, rc, nil)
}

// NotFound resolves GET /<slug> to the viewer of an existing tour; anything
// else is a 404.
func (h *PagesHandler) NotFound(c *gin.Context) {
	p := strings.Trim(c.Request.URL.Path, "/")
	if c.Request.Method == http.MethodGet && p != "" && !strings.Contains(p, "/") && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
		h.viewer(c, p)
		return
	}
	middleware.Fail(c, apperr.NotFoundErr(msgPageNotFound))
}

func (h *PagesHandler) MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": msgMethodNotAllowed})
}

func (h *PagesHandler) viewer(c *gin.Context, rawSlug string) {
	view, err := h.svc.GetTour(c.Request.Context(), rawSlug)
	if err != nil {
		if apperr.IsKind(err, apperr.InvalidSlug) {
			err = apperr.NotFoundErr(msgPageNotFound)
		}
		middleware.Fail(c, err)
		return
	}
	render.Component(c, http.StatusOK, render.ViewerPage(view.Slug))
}
