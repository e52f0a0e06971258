package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/z-memory/backend/internal/handler/generate"
	responseService "github.com/zhouzirui/z-memory/backend/internal/service/response"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler WebSocket 回复会话处理器。每个入站帧是一个生成请求，
// 同一连接上的请求按顺序处理。
type Handler struct {
	responder *responseService.Service
	logger    *log.Logger
	upgrader  websocket.Upgrader

	// readTimeout bounds the wait for the next frame or pong. It is not
	// armed while a request is being generated.
	readTimeout time.Duration
}

// New 创建WebSocket处理器
func New(responder *responseService.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		responder:   responder,
		logger:      logger.WithPrefix("websocket"),
		readTimeout: readTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	generate.Request
}

// OutgoingMessage is every frame the server writes.
type OutgoingMessage struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
	Data         any    `json:"data,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// conn serialises writes; gorilla allows only one concurrent writer.
type conn struct {
	id string
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msgType, requestID string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(OutgoingMessage{
		Type:         msgType,
		ConnectionID: c.id,
		RequestID:    requestID,
		Data:         data,
		Timestamp:    time.Now().Unix(),
	})
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "err", err)
		return
	}
	defer wsConn.Close()

	c := &conn{id: uuid.NewString(), ws: wsConn}
	logger := h.logger.With("connection", c.id)
	logger.Info("new connection")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	wsConn.SetReadDeadline(time.Now().Add(h.readTimeout))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go h.pingLoop(ctx, c)

	if err := c.send("connected", "", map[string]any{
		"personas": h.responder.Personas().List(),
	}); err != nil {
		return
	}

	for {
		var msg inboundMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read error", "err", err)
			}
			return
		}
		wsConn.SetReadDeadline(time.Time{})

		if err := h.handleMessage(ctx, c, &msg); err != nil {
			logger.Warn("write failed", "err", err)
			return
		}
		wsConn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

// handleMessage returns an error only when the connection is unusable.
func (h *Handler) handleMessage(ctx context.Context, c *conn, msg *inboundMessage) error {
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}

	switch msg.Type {
	case "", "generate":
	case "ping":
		return c.send("pong", msg.RequestID, nil)
	default:
		return c.send("error", msg.RequestID, map[string]string{"message": "unsupported message type: " + msg.Type})
	}

	profile, err := msg.Profile()
	if err != nil {
		return c.send("error", msg.RequestID, map[string]string{"message": err.Error()})
	}

	if msg.GenerateAll {
		responses, err := h.responder.GenerateAllPersonaResponses(ctx, msg.Query, profile)
		if err != nil {
			return c.send("error", msg.RequestID, map[string]string{"message": err.Error()})
		}
		return c.send("responses", msg.RequestID, map[string]any{
			"responses":   responses,
			"memoryUsage": h.responder.Compare(responses).MemoryUsage,
		})
	}

	if msg.Personality == "" {
		return c.send("error", msg.RequestID, map[string]string{"message": "Must specify either 'personality' or 'generateAll: true'"})
	}

	var writeErr error
	resp, err := h.responder.StreamPersonaResponse(ctx, msg.Personality, msg.Query, profile, func(delta string) error {
		writeErr = c.send("delta", msg.RequestID, map[string]string{"content": delta})
		return writeErr
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return c.send("error", msg.RequestID, map[string]string{"message": err.Error()})
	}
	return c.send("response", msg.RequestID, resp)
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
