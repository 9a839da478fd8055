package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 邮件类型
const (
	MailConfirmation = "confirmation" // 匿名评论确认
	MailFollowup     = "followup"     // 后续评论提醒
	MailVerifyCode   = "verify_code"  // 注册验证码
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// MailMessage 待发送邮件任务
type MailMessage struct {
	Kind        string `json:"kind"`
	To          string `json:"to"`
	ConfirmURL  string `json:"confirm_url,omitempty"`
	VerifyCode  string `json:"verify_code,omitempty"`
	TargetTitle string `json:"target_title,omitempty"`
	TargetURL   string `json:"target_url,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将邮件任务加入队列
func (q *Queue) Push(ctx context.Context, msg *MailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取邮件任务（阻塞）
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*MailMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg MailMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
