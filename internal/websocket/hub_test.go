package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastIsolatedByBusiness(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{ID: "c1", BusinessID: "biz-1", Send: make(chan []byte, 1)}
	b := &Client{ID: "c2", BusinessID: "biz-2", Send: make(chan []byte, 1)}
	hub.Register <- a
	hub.Register <- b
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 },
		time.Second, 5*time.Millisecond)

	hub.BroadcastAlertSync("biz-1", map[string]int{"synced": 3})

	select {
	case msg := <-a.Send:
		assert.Contains(t, string(msg), `"alert_sync"`)
	case <-time.After(time.Second):
		t.Fatal("no message delivered to same-business client")
	}
	select {
	case msg := <-b.Send:
		t.Fatalf("cross-business client received %s", msg)
	default:
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{ID: "c1", BusinessID: "biz-1", Send: make(chan []byte, 1)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	// Stop 返回即事件循环已退出,所有连接清空
	hub.Stop()
	assert.Zero(t, hub.GetClientCount())

	_, open := <-client.Send
	assert.False(t, open)
}
