package websocket

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub 管理所有 WebSocket 连接,按租户隔离广播
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 注册新客户端
	Register chan *Client

	// 注销客户端
	Unregister chan *Client

	// 停止信号与退出确认
	stop chan struct{}
	done chan struct{}

	// 互斥锁,保护 clients map
	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run 运行 Hub,收到停止信号后退出
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// Stop 停止 Hub 并等待事件循环退出
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
		delete(h.clients, client)
	}
}

// Envelope WebSocket 推送消息信封
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// BroadcastAlertSync 向指定租户的所有连接推送同步结果
func (h *Hub) BroadcastAlertSync(businessID string, payload interface{}) {
	h.broadcastToBusiness(businessID, Envelope{Type: "alert_sync", Data: payload})
}

// broadcastToBusiness 向指定租户的所有客户端广播消息
func (h *Hub) broadcastToBusiness(businessID string, envelope Envelope) {
	message, err := json.Marshal(envelope)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal websocket message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.BusinessID != businessID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// 发送缓冲已满,视为慢消费者,直接断开
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// GetClientCount 获取客户端数量
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
