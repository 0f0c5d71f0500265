package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tryon-server/modules/common/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS는 미들웨어에서 처리
	},
}

type watcher struct {
	conn    *websocket.Conn
	channel string
	send    chan []byte
}

// Hub - 채널별 상태 이벤트 브로드캐스트
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*watcher]bool
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*watcher]bool),
	}
}

var defaultHub = NewHub()

// DefaultHub - 전역 Hub 인스턴스
func DefaultHub() *Hub {
	return defaultHub
}

// Publish - 채널의 모든 watcher에게 이벤트 전송
func Publish(channel, eventType, status string, payload interface{}) {
	defaultHub.Publish(channel, eventType, status, payload)
}

func (h *Hub) Publish(channel, eventType, status string, payload interface{}) {
	event := model.StatusEvent{
		Channel:   channel,
		Type:      eventType,
		Status:    status,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ [Notify] Failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for w := range h.watchers[channel] {
		select {
		case w.send <- data:
		default:
			// 느린 watcher는 드롭 (블로킹 방지)
		}
	}
}

// WatcherCount - 현재 연결된 watcher 수
func (h *Hub) WatcherCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, set := range h.watchers {
		count += len(set)
	}
	return count
}

// HandleWatch - GET /ws?channel=<resultId|jobId>
func (h *Hub) HandleWatch(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		http.Error(w, "channel query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Notify] WebSocket upgrade failed: %v", err)
		return
	}

	watch := &watcher{
		conn:    conn,
		channel: channel,
		send:    make(chan []byte, 16),
	}

	h.register(watch)
	log.Printf("🔗 [Notify] Watcher connected: channel=%s (total: %d)", channel, h.WatcherCount())

	go watch.writePump()
	go h.readPump(watch)
}

func (h *Hub) register(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watchers[w.channel] == nil {
		h.watchers[w.channel] = make(map[*watcher]bool)
	}
	h.watchers[w.channel][w] = true
}

func (h *Hub) unregister(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.watchers[w.channel]; ok {
		if _, ok := set[w]; ok {
			delete(set, w)
			close(w.send)
			if len(set) == 0 {
				delete(h.watchers, w.channel)
			}
		}
	}
}

// readPump - 클라이언트 메시지는 무시, 연결 종료 감지용
func (h *Hub) readPump(w *watcher) {
	defer func() {
		h.unregister(w)
		w.conn.Close()
		log.Printf("🔌 [Notify] Watcher disconnected: channel=%s", w.channel)
	}()

	w.conn.SetReadLimit(512)
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *watcher) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-w.send:
			if !ok {
				w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
