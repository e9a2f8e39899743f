package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yengalvez/tour360/internal/http/middleware"
	"github.com/yengalvez/tour360/internal/http/validation"
	"github.com/yengalvez/tour360/internal/modules/tours"
	"github.com/yengalvez/tour360/internal/shared/apperr"
)

const (
	msgNoFile       = "No se recibió ningún archivo"
	msgFileTooLarge = "El archivo es demasiado grande"
	msgBodyTooLarge = "La petición es demasiado grande"
	msgBadBody      = "No se pudo leer la petición"
)

type ToursHandler struct {
	Logger *slog.Logger
	svc    *tours.Service
}

func NewToursHandler(logger *slog.Logger, svc *tours.Service) *ToursHandler {
	return &ToursHandler{Logger: logger, svc: svc}
}

type createTourRequest struct {
	Name  string `json:"name" binding:"max=256"`
	Title string `json:"title" binding:"max=256"`
}

// POST /api/create-tour, POST /api/tours
func (h *ToursHandler) Create(c *gin.Context) {
	var req createTourRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		if isTooLarge(err) {
			middleware.Fail(c, apperr.MalformedInputErr(msgBodyTooLarge, nil))
			return
		}
		if validation.IsValidation(err) {
			middleware.Fail(c, apperr.MalformedInputErr("Revisa los datos del formulario", validation.FromBindError(err, &req)))
			return
		}
		middleware.Fail(c, apperr.MalformedInputErr("JSON inválido", nil))
		return
	}

	view, err := h.svc.CreateTour(c.Request.Context(), tours.CreateInput{Name: req.Name, Title: req.Title})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.PureJSON(http.StatusOK, view)
}

// GET /api/get-tour?slug=, GET /api/tours/:slug
func (h *ToursHandler) Get(c *gin.Context) {
	view, err := h.svc.GetTour(c.Request.Context(), slugParam(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.PureJSON(http.StatusOK, view)
}

// POST /api/save-tour?slug=, POST /api/tours/:slug/save
func (h *ToursHandler) Save(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		msg := msgBadBody
		if isTooLarge(err) {
			msg = msgBodyTooLarge
		}
		middleware.Fail(c, apperr.MalformedInputErr(msg, nil))
		return
	}

	view, err := h.svc.SaveTour(c.Request.Context(), slugParam(c), body)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.PureJSON(http.StatusOK, view)
}

// POST /api/upload-scene?slug=, POST /api/tours/:slug/upload
// Multipart: "scene" file, optional "sceneName".
func (h *ToursHandler) Upload(c *gin.Context) {
	up := tours.Upload{}

	fh, err := c.FormFile("scene")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			middleware.Fail(c, apperr.MalformedInputErr(msgNoFile, nil))
			return
		}
		defer f.Close()
		up.Filename = fh.Filename
		up.Size = fh.Size
		up.Body = f
	case isTooLarge(err):
		middleware.Fail(c, apperr.MalformedInputErr(msgFileTooLarge, nil))
		return
	default:
		// Missing file: the service still validates slug and tour first.
		h.Logger.DebugContext(c.Request.Context(), "upload_without_file", slog.Any("err", err))
	}
	up.SceneName = c.PostForm("sceneName")

	res, err := h.svc.UploadScene(c.Request.Context(), slugParam(c), up)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.PureJSON(http.StatusOK, res)
}

// slugParam reads the path parameter, falling back to ?slug= for the
// legacy endpoint names.
func slugParam(c *gin.Context) string {
	if s := c.Param("slug"); s != "" {
		return s
	}
	return c.Query("slug")
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
