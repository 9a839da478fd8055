package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qs3c/comment_go_server/internal/pkg/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要验证 Origin
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// Handle 订阅目标的实时评论流
// GET /api/v1/ws?content_type=blog.post&object_pk=42&site_id=1
// 评论流只含公开内容，订阅不需要登录
func (h *WebSocketHandler) Handle(c *gin.Context) {
	contentType := c.Query("content_type")
	objectPK := c.Query("object_pk")
	siteID := c.DefaultQuery("site_id", "1")

	if contentType == "" || objectPK == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content_type or object_pk"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &ws.Client{
		TargetKey: fmt.Sprintf("%s:%s:%s", contentType, objectPK, siteID),
		Conn:      conn,
	}

	h.hub.Register(client)

	// 保持连接，读取消息（主要用于检测断开）
	go func() {
		defer h.hub.Unregister(client)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}
