package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"care-monitor/internal/platform/logger"
	"care-monitor/internal/ports/store"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 5 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 16
)

// Frame es cada mensaje que recibe el cliente.
type Frame struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Handler expone por websocket los cambios de las keys permitidas del Store.
type Handler struct {
	store   store.Store
	log     logger.Logger
	allowed map[string]bool

	upgrader websocket.Upgrader
}

func NewHandler(s store.Store, log logger.Logger, keys ...string) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	return &Handler{
		store:   s,
		log:     log.With(map[string]any{"component": "realtime"}),
		allowed: allowed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cliente local (misma máquina / WebView).
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{key}", h.serve)
}

// serve godoc
// @Summary Suscripción en vivo a una key
// @Description Websocket: envía el valor actual y luego cada cambio como {key, value}.
// @Tags realtime
// @Param key path string true "Key del store (ej. incidents:list)"
// @Success 101
// @Failure 404 {string} string "unknown key"
// @Router /ws/{key} [get]
func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !h.allowed[key] {
		http.Error(w, "unknown key", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió al cliente.
		h.log.Warn("websocket upgrade failed", map[string]any{"key": key, "error": err})
		return
	}
	defer conn.Close()

	updates := make(chan []byte, sendBuffer)
	unsubscribe := h.store.Subscribe(key, func(v []byte) {
		select {
		case updates <- v:
		default:
			h.log.Warn("websocket client too slow, update dropped", map[string]any{"key": key})
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// El lector sólo detecta el cierre del cliente.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if v, ok, err := h.store.Get(ctx, key); err == nil && ok {
		if err := h.write(conn, key, v); err != nil {
			return
		}
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case v := <-updates:
			if err := h.write(conn, key, v); err != nil {
				h.log.Debug("websocket write failed", map[string]any{"key": key, "error": err})
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, key string, v []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Frame{Key: key, Value: json.RawMessage(v)})
}
