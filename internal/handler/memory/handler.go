package memory

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-memory/backend/internal/analysis/transcript"
	"github.com/zhouzirui/z-memory/backend/internal/apperr"
	"github.com/zhouzirui/z-memory/backend/internal/model/chat"
	"github.com/zhouzirui/z-memory/backend/internal/model/memory"
	memoryService "github.com/zhouzirui/z-memory/backend/internal/service/memory"
	"github.com/zhouzirui/z-memory/backend/pkg/utils"
)

// Handler 记忆提取相关的HTTP处理器
type Handler struct {
	extractor *memoryService.Service
	logger    *log.Logger
}

// New 创建记忆处理器
func New(extractor *memoryService.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		extractor: extractor,
		logger:    logger.WithPrefix("memory"),
	}
}

// RegisterRoutes 注册记忆相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/extract-memory", h.handleExtract)
	r.Post("/parse-transcript", h.handleParse)
}

type extractRequest struct {
	Messages []chat.Message `json:"messages"`
}

type extractResponse struct {
	Success  bool           `json:"success"`
	Memories memory.Profile `json:"memories"`
	Warnings []string       `json:"warnings,omitempty"`
	Stats    memory.Stats   `json:"stats"`
}

// handleExtract 从对话中提取记忆
func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	var payload extractRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if err := checkMessages(payload.Messages); err != nil {
		utils.RespondAppError(w, err)
		return
	}

	h.logger.Info("extracting memories", "messages", len(payload.Messages))
	result, err := h.extractor.Run(r.Context(), payload.Messages)
	if err != nil {
		h.logger.Error("extraction failed", "err", err)
		utils.RespondAppError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, extractResponse{
		Success:  true,
		Memories: result.Memories,
		Warnings: result.Validation.Warnings,
		Stats:    result.Stats,
	})
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Success    bool                        `json:"success"`
	Messages   []chat.Message              `json:"messages"`
	Validation transcript.ValidationResult `json:"validation"`
}

// handleParse 解析粘贴的对话文本
func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	var payload parseRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondAppError(w, err)
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondAppError(w, apperr.InputFormat("Invalid request format: text is required"))
		return
	}

	messages := transcript.Parse(payload.Text)
	utils.RespondJSON(w, http.StatusOK, parseResponse{
		Success:    true,
		Messages:   messages,
		Validation: transcript.Validate(messages),
	})
}

func checkMessages(messages []chat.Message) error {
	if messages == nil {
		return apperr.InputFormat("Invalid request format: messages is required")
	}
	for i, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return apperr.InputFormat("Invalid request format: messages[%d].content must not be empty", i)
		}
		if m.Role == "" {
			return apperr.InputFormat("Invalid request format: messages[%d].role is required", i)
		}
	}
	return nil
}
