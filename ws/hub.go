package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub giữ kết nối theo user subject và một tập kết nối global.
// Hub cài đặt services.Notifier.
type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // Theo từng user subject
	GlobalClients map[*websocket.Conn]*Client            // Dành cho broadcast chung
	Mutex         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:       make(map[string]map[*websocket.Conn]*Client),
		GlobalClients: make(map[*websocket.Conn]*Client),
	}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{Conn: conn, Send: make(chan []byte, 256)}
}

// RegisterUser trả về client đã đăng ký; caller chạy writePump.
func (h *Hub) RegisterUser(subject string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[subject]; !ok {
		h.Clients[subject] = make(map[*websocket.Conn]*Client)
	}
	client := newClient(conn)
	h.Clients[subject][conn] = client
	return client
}

func (h *Hub) RegisterGlobal(conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := newClient(conn)
	h.GlobalClients[conn] = client
	return client
}

func (h *Hub) UnregisterUser(subject string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[subject]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, subject)
		}
	}
}

func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// NotifyUser gửi event JSON tới mọi kết nối của user. Client chậm bị bỏ qua message.
func (h *Hub) NotifyUser(subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	for _, client := range h.Clients[subject] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// Broadcast gửi event tới toàn bộ global clients.
func (h *Hub) Broadcast(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

type Stats struct {
	Users       int `json:"users"`
	UserConns   int `json:"user_connections"`
	GlobalConns int `json:"global_connections"`
}

func (h *Hub) GetStats() Stats {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	st := Stats{Users: len(h.Clients), GlobalConns: len(h.GlobalClients)}
	for _, conns := range h.Clients {
		st.UserConns += len(conns)
	}
	return st
}

// writePump kết thúc khi Send bị đóng (Unregister) hoặc ghi lỗi.
func writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
