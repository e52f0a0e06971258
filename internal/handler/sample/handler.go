package sample

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/zhouzirui/z-memory/backend/internal/model/sample"
	"github.com/zhouzirui/z-memory/backend/pkg/utils"
)

// Handler 示例对话的HTTP处理器
type Handler struct{}

// New 创建示例对话处理器
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes 注册示例对话路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/samples", h.handleList)
	r.Get("/samples/{sampleID}", h.handleGet)
}

type summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	MessageCount int    `json:"messageCount"`
}

type detail struct {
	sample.Conversation
	Transcript string `json:"transcript"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries := lo.Map(sample.List(), func(c sample.Conversation, _ int) summary {
		return summary{ID: c.ID, Name: c.Name, Description: c.Description, MessageCount: len(c.Messages)}
	})
	utils.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := sample.Get(chi.URLParam(r, "sampleID"))
	if err != nil {
		utils.RespondAppError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, detail{Conversation: c, Transcript: c.Transcript()})
}
