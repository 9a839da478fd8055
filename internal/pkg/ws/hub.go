package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub 按目标键（content_type:object_pk:site_id）分组的订阅者集合
// 一个页面可以有多个连接（多标签页、重连等场景）
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	TargetKey string
	Conn      *websocket.Conn
	mu        sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.TargetKey] == nil {
		h.clients[client.TargetKey] = make(map[*Client]struct{})
	}
	h.clients[client.TargetKey][client] = struct{}{}

	log.Printf("Subscriber joined %s, subscribers: %d", client.TargetKey, len(h.clients[client.TargetKey]))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.TargetKey]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.TargetKey)
		}
	}
	log.Printf("Subscriber left %s", client.TargetKey)
}

// Broadcast 向订阅了同一目标的所有连接发送消息
func (h *Hub) Broadcast(targetKey string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns, ok := h.clients[targetKey]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Printf("Broadcast write error for %s: %v", targetKey, err)
		}
	}
	return nil
}

// SubscriberCount 获取某个目标的订阅连接数
func (h *Hub) SubscriberCount(targetKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[targetKey])
}

// ConnectionCount 获取在线连接总数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
