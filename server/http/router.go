package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"merge-service/internal/config"
	"merge-service/internal/export"
	mergeHnd "merge-service/internal/merge/handler"
	"merge-service/internal/merge/model"
	"merge-service/internal/middleware"
	"merge-service/server/http/handlers"
)

func NewRouter(cfg config.Config, mcfg model.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: requestID (логгер в контексте) -> recover -> logging -> cors -> limit
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Recover())
	r.Use(middleware.Logging())
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	// основной эндпоинт
	exp := export.New(cfg.ExportDir, logger.With().Str("component", "export").Logger())
	r.Post("/merge", mergeHnd.Merge(mcfg, exp, cfg.MaxUploadMB))

	return r
}
