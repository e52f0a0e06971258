package stream

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/handler/generate"
	responseService "github.com/zhouzirui/z-memory/backend/internal/service/response"
	"github.com/zhouzirui/z-memory/backend/pkg/utils"
)

// Handler manages streaming persona responses via Server-Sent Events
type Handler struct {
	responder *responseService.Service
	logger    *log.Logger
}

// New creates a new stream handler
func New(responder *responseService.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		responder: responder,
		logger:    logger.WithPrefix("stream"),
	}
}

// RegisterRoutes 注册流式回复路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/stream-response", h.handleStream)
}

// Event payloads, one per SSE event name.
type (
	StartEvent struct {
		Personality string `json:"personality"`
		Name        string `json:"name"`
	}
	DeltaEvent struct {
		Content string `json:"content"`
	}
	EndEvent struct {
		Finished bool `json:"finished"`
	}
	ErrorEvent struct {
		Error string `json:"error"`
	}
)

// handleStream validates the request up front so that bad input still gets
// a JSON error with a status code; once the stream opens, failures are
// reported as "error" events.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var payload generate.Request
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
	p, ok := h.responder.Personas().FindByID(payload.Personality)
	if !ok {
		utils.RespondAppError(w, apperr.NotFound("Unknown personality %q", payload.Personality))
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	send := func(event string, data any) error {
		return utils.SendSSEEvent(w, flusher, event, data)
	}

	if err := send("start", StartEvent{Personality: p.ID, Name: p.Name}); err != nil {
		h.logger.Warn("client write failed", "err", err)
		return
	}

	resp, err := h.responder.StreamPersonaResponse(r.Context(), p.ID, payload.Query, profile, func(delta string) error {
		return send("delta", DeltaEvent{Content: delta})
	})
	if err != nil {
		h.logger.Error("stream failed", "persona", p.ID, "err", err)
		_ = send("error", ErrorEvent{Error: err.Error()})
		return
	}

	if err := send("message", resp); err != nil {
		return
	}
	_ = send("end", EndEvent{Finished: true})
	h.logger.Info("completed stream", "persona", p.ID, "references", len(resp.MemoryReferences))
}
