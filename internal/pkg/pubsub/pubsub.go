package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelCommentEvents = "comment_events"
)

// 事件类型常量
const (
	EventCreated = "comment_created"
	EventUpdated = "comment_updated"
	EventRemoved = "comment_removed"
	EventPinned  = "comment_pinned"
)

// CommentEvent 评论事件消息
type CommentEvent struct {
	Type        string `json:"type"`
	CommentID   int64  `json:"comment_id"`
	ContentType string `json:"content_type"`
	ObjectPK    string `json:"object_pk"`
	SiteID      int64  `json:"site_id"`
	UserName    string `json:"user_name,omitempty"`
	Body        string `json:"body,omitempty"`
	ParentID    int64  `json:"parent_id,omitempty"`
	SubmitDate  string `json:"submit_date,omitempty"`
}

// TargetKey 事件所属目标的订阅键
func (e *CommentEvent) TargetKey() string {
	return fmt.Sprintf("%s:%s:%d", e.ContentType, e.ObjectPK, e.SiteID)
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEvent 发布评论事件
func (p *Publisher) PublishEvent(ctx context.Context, msg *CommentEvent) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal comment event: %w", err)
	}

	return p.client.Publish(ctx, ChannelCommentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅评论事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*CommentEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelCommentEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event CommentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
