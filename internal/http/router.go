package http

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yengalvez/tour360/internal/config"
	"github.com/yengalvez/tour360/internal/http/handlers"
	"github.com/yengalvez/tour360/internal/http/middleware"
	"github.com/yengalvez/tour360/internal/modules/tours"
	"github.com/yengalvez/tour360/web"
)

// maxTourJSONBytes caps JSON request bodies; images go through the upload
// limit instead.
const maxTourJSONBytes = 1 << 20

func NewRouter(logger *slog.Logger, cfg config.Config, svc *tours.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Recovery(logger))

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	toursH := handlers.NewToursHandler(logger, svc)
	pagesH := handlers.NewPagesHandler(svc)

	jsonLimit := middleware.MaxBody(maxTourJSONBytes)
	uploadLimit := middleware.MaxBody(cfg.MaxUploadBytes())

	api := r.Group("/api")
	{
		api.POST("/create-tour", jsonLimit, toursH.Create)
		api.GET("/get-tour", toursH.Get)
		api.POST("/save-tour", jsonLimit, toursH.Save)
		api.POST("/upload-scene", uploadLimit, toursH.Upload)

		api.POST("/tours", jsonLimit, toursH.Create)
		api.GET("/tours/:slug", toursH.Get)
		api.POST("/tours/:slug/save", jsonLimit, toursH.Save)
		api.POST("/tours/:slug/upload", uploadLimit, toursH.Upload)
	}

	r.GET("/", pagesH.Editor)
	r.GET("/tours/:slug", pagesH.Viewer)
	r.GET("/tours/:slug/:file", pagesH.Asset)

	r.NoRoute(pagesH.NotFound)
	r.NoMethod(pagesH.MethodNotAllowed)

	return r
}
