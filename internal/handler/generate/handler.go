package generate

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	responseService "github.com/zhouzirui/z-memory/backend/internal/service/response"
	"github.com/zhouzirui/z-memory/backend/pkg/utils"
)

// Handler 人格回复生成的HTTP处理器
type Handler struct {
	responder *responseService.Service
	logger    *log.Logger
}

// New 创建回复处理器
func New(responder *responseService.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		responder: responder,
		logger:    logger.WithPrefix("generate"),
	}
}

// RegisterRoutes 注册回复生成路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate-response", h.handleGenerate)
}

// Request is the body shared by the generate, stream and websocket entry
// points.
type Request struct {
	Query       string          `json:"query"`
	Memories    json.RawMessage `json:"memories"`
	Personality string          `json:"personality,omitempty"`
	GenerateAll bool            `json:"generateAll,omitempty"`
}

// Profile validates the embedded memory profile against the schema.
func (req Request) Profile() (memory.Profile, error) {
	if len(req.Memories) == 0 || string(req.Memories) == "null" {
		return memory.Profile{}, apperr.InputFormat("Invalid request format: memories is required")
	}
	profile, err := memory.Decode(req.Memories)
	if err != nil {
		return memory.Profile{}, apperr.InputFormat("Invalid request format: %v", err)
	}
	return profile, nil
}

type singleResponse struct {
	Success          bool     `json:"success"`
	Response         string   `json:"response"`
	MemoryReferences []string `json:"memoryReferences"`
}

type allResponse struct {
	Success     bool                              `json:"success"`
	Responses   []responseService.PersonaResponse `json:"responses"`
	MemoryUsage map[string]int                    `json:"memoryUsage"`
}

// handleGenerate 生成单个或全部人格的回复
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload Request
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	profile, err := payload.Profile()
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if v := responseService.ValidateQuery(payload.Query); !v.IsValid {
		utils.RespondError(w, http.StatusBadRequest, v.Error)
		return
	}

	switch {
	case payload.GenerateAll:
		h.logger.Info("generating responses from all personas")
		responses, err := h.responder.GenerateAllPersonaResponses(r.Context(), payload.Query, profile)
		if err != nil {
			h.logger.Error("generate all failed", "err", err)
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, allResponse{
			Success:     true,
			Responses:   responses,
			MemoryUsage: h.responder.Compare(responses).MemoryUsage,
		})
	case payload.Personality != "":
		h.logger.Info("generating response", "persona", payload.Personality)
		resp, err := h.responder.GeneratePersonaResponse(r.Context(), payload.Personality, payload.Query, profile)
		if err != nil {
			h.logger.Error("generate failed", "persona", payload.Personality, "err", err)
			utils.RespondAppError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, singleResponse{
			Success:          true,
			Response:         resp.Response,
			MemoryReferences: resp.MemoryReferences,
		})
	default:
		utils.RespondError(w, http.StatusBadRequest, "Must specify either 'personality' or 'generateAll: true'")
	}
}
