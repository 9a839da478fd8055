package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/qs3c/comment_go_server/config"
	"github.com/qs3c/comment_go_server/internal/database"
	"github.com/qs3c/comment_go_server/internal/pkg/email"
	"github.com/qs3c/comment_go_server/internal/pkg/queue"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	emailService := email.NewService(&cfg.Email)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	log.Printf("Mailer started, max workers: %d", maxWorkers)

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					log.Printf("Mailer worker %d shutting down", workerID)
					return
				default:
					msg, err := mailQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Mailer worker %d: failed to pop message: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					if err := deliver(emailService, msg); err != nil {
						log.Printf("Mailer worker %d: failed to send %s mail to %s: %v",
							workerID, msg.Kind, msg.To, err)
					}
				}
			}
		}(i)
	}

	wg.Wait()
	log.Println("Mailer stopped")
}

func deliver(svc *email.Service, msg *queue.MailMessage) error {
	switch msg.Kind {
	case queue.MailConfirmation:
		return svc.SendConfirmationRequest(msg.To, msg.ConfirmURL)
	case queue.MailFollowup:
		return svc.SendFollowupNotification(msg.To, msg.TargetTitle, msg.TargetURL, msg.Excerpt)
	case queue.MailVerifyCode:
		return svc.SendVerificationCode(msg.To, msg.VerifyCode)
	default:
		log.Printf("Unknown mail kind: %s", msg.Kind)
		return nil
	}
}
