package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/podcastr-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // chỉ để phát triển, nên giới hạn ở production
	},
}

func connectedMessage(message string) []byte {
	data, _ := json.Marshal(gin.H{"type": "connected", "message": message})
	return data
}

// readLoop giữ kết nối cho tới khi client đóng.
func readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// HandleUserWebSocket: kênh riêng của user, nhận generation_status.
func (h *Hub) HandleUserWebSocket(verifier utils.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("WebSocket upgrade thất bại:", err)
			return
		}
		log.Printf("User WS connected: subject=%s\n", identity.Subject)

		client := h.RegisterUser(identity.Subject, conn)
		client.Send <- connectedMessage("Connected to user WebSocket")
		go writePump(client)

		readLoop(conn)
		h.UnregisterUser(identity.Subject, conn)
		log.Printf("User WS disconnected: subject=%s\n", identity.Subject)
	}
}

// HandleGlobalWebSocket: kênh chung, nhận podcast_list_changed.
func (h *Hub) HandleGlobalWebSocket(verifier utils.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("WebSocket upgrade thất bại:", err)
			return
		}
		log.Printf("Global WS connected: subject=%s\n", identity.Subject)

		client := h.RegisterGlobal(conn)
		client.Send <- connectedMessage("Connected to global WebSocket")
		go writePump(client)

		readLoop(conn)
		h.UnregisterGlobal(conn)
		log.Printf("Global WS disconnected: subject=%s\n", identity.Subject)
	}
}
