package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-memory/backend/internal/handler/generate"
	memoryHandler "github.com/zhouzirui/z-memory/backend/internal/handler/memory"
	"github.com/zhouzirui/z-memory/backend/internal/handler/persona"
	"github.com/zhouzirui/z-memory/backend/internal/handler/sample"
	"github.com/zhouzirui/z-memory/backend/internal/handler/stream"
	"github.com/zhouzirui/z-memory/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/z-memory/backend/internal/middleware"
	memoryService "github.com/zhouzirui/z-memory/backend/internal/service/memory"
	responseService "github.com/zhouzirui/z-memory/backend/internal/service/response"
	"github.com/zhouzirui/z-memory/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(logger *log.Logger, allowedOrigins []string, extractor *memoryService.Service, responder *responseService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	// 405 bodies follow the same {success,error} shape as every other error
	r.MethodNotAllowed(utils.MethodNotAllowed)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "Not found")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		persona.New(responder.Personas()).RegisterRoutes(api)
		sample.New().RegisterRoutes(api)
		memoryHandler.New(extractor, logger).RegisterRoutes(api)
		generate.New(responder, logger).RegisterRoutes(api)
		stream.New(responder, logger).RegisterRoutes(api)
		ws.New(responder, logger).RegisterRoutes(api)
	})

	return r
}
