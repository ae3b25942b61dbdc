package ws

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubNotifyUser(t *testing.T) {
	h := NewHub()
	a1, a2, b := &websocket.Conn{}, &websocket.Conn{}, &websocket.Conn{}
	ca1 := h.RegisterUser("alice", a1)
	ca2 := h.RegisterUser("alice", a2)
	cb := h.RegisterUser("bob", b)

	h.NotifyUser("alice", map[string]string{"type": "generation_status", "status": "ready"})

	for _, c := range []*Client{ca1, ca2} {
		require.Len(t, c.Send, 1)
		var got map[string]string
		require.NoError(t, json.Unmarshal(<-c.Send, &got))
		assert.Equal(t, "ready", got["status"])
	}
	assert.Len(t, cb.Send, 0)

	assert.Equal(t, Stats{Users: 2, UserConns: 3}, h.GetStats())

	h.UnregisterUser("alice", a1)
	h.UnregisterUser("alice", a2)
	_, open := <-ca1.Send
	assert.False(t, open)
	assert.Equal(t, Stats{Users: 1, UserConns: 1}, h.GetStats())
}

func TestHubBroadcastDropsForSlowClients(t *testing.T) {
	h := NewHub()
	conn := &websocket.Conn{}
	client := h.RegisterGlobal(conn)

	for i := 0; i < cap(client.Send)+10; i++ {
		h.Broadcast(map[string]int{"n": i})
	}
	assert.Len(t, client.Send, cap(client.Send))
	assert.Equal(t, 1, h.GetStats().GlobalConns)

	h.UnregisterGlobal(conn)
	assert.Equal(t, 0, h.GetStats().GlobalConns)
	// gọi lại không panic
	h.UnregisterGlobal(conn)
}

func TestNotifyUnknownUserIsNoop(t *testing.T) {
	h := NewHub()
	h.NotifyUser("nobody", "x")
	assert.Equal(t, Stats{}, h.GetStats())
}
