package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/comment_go_server/config"
	"github.com/qs3c/comment_go_server/internal/api"
	"github.com/qs3c/comment_go_server/internal/api/handler"
	"github.com/qs3c/comment_go_server/internal/database"
	"github.com/qs3c/comment_go_server/internal/pkg/cron"
	"github.com/qs3c/comment_go_server/internal/pkg/email"
	"github.com/qs3c/comment_go_server/internal/pkg/hooks"
	"github.com/qs3c/comment_go_server/internal/pkg/oauth"
	"github.com/qs3c/comment_go_server/internal/pkg/pubsub"
	"github.com/qs3c/comment_go_server/internal/pkg/queue"
	"github.com/qs3c/comment_go_server/internal/pkg/ws"
	"github.com/qs3c/comment_go_server/internal/repository"
	"github.com/qs3c/comment_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 邮件队列与评论事件
	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	publisher := pubsub.NewPublisher(rdb)

	// WebSocket Hub，订阅 Redis 评论事件并广播给对应目标
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.CommentEvent) {
			wsHub.Broadcast(event.TargetKey(), &ws.Message{
				Type: event.Type,
				Data: event,
			})
		})
		if err != nil && err != context.Canceled {
			log.Printf("Comment event subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 发布钩子：登录用户的提交视为可信来源，跳过表单防篡改校验
	reg := hooks.NewRegistry()
	reg.RegisterAuthorize(func(e *hooks.Event) hooks.CheckResult {
		if e.UserID != nil {
			return hooks.Approve
		}
		return hooks.NoOpinion
	})

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	flagRepo := repository.NewFlagRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, mailQueue, cfg)
	commentService := service.NewCommentService(commentRepo, targetRepo, userRepo, reg, mailQueue, publisher, cfg)
	feedbackService := service.NewFeedbackService(flagRepo, commentRepo, cfg)

	// 定时任务：待审核评论摘要
	emailService := email.NewService(&cfg.Email)
	cronService := cron.NewService(commentRepo, userRepo, emailService, time.Hour)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	oauthHandler := handler.NewOAuthHandler(authService, oauth.NewStateStore(rdb))
	commentHandler := handler.NewCommentHandler(commentService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	websocketHandler := handler.NewWebSocketHandler(wsHub)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		oauthHandler,
		commentHandler,
		feedbackHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
