package cron

import (
	"log"
	"time"

	"github.com/qs3c/comment_go_server/internal/pkg/email"
	"github.com/qs3c/comment_go_server/internal/repository"
)

const digestBatchLimit = 50

type Service struct {
	commentRepo  *repository.CommentRepository
	userRepo     *repository.UserRepository
	emailService *email.Service
	interval     time.Duration
	stopChan     chan struct{}
}

func NewService(
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	emailService *email.Service,
	interval time.Duration,
) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		emailService: emailService,
		interval:     interval,
		stopChan:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runModerationDigest()
	log.Println("Cron service started (moderation digest)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runModerationDigest 周期性给版主发送待审核摘要
func (s *Service) runModerationDigest() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendDigest()
		}
	}
}

func (s *Service) sendDigest() {
	pending, err := s.commentRepo.ListPendingModeration(digestBatchLimit)
	if err != nil {
		log.Printf("Moderation digest: failed to list pending comments: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	moderators, err := s.userRepo.ListModerators()
	if err != nil {
		log.Printf("Moderation digest: failed to list moderators: %v", err)
		return
	}

	items := make([]email.DigestItem, 0, len(pending))
	for _, c := range pending {
		excerpt := []rune(c.Body)
		if len(excerpt) > 80 {
			excerpt = excerpt[:80]
		}
		items = append(items, email.DigestItem{
			CommentID:   c.ID,
			TargetTitle: c.ContentType + "/" + c.ObjectPK,
			UserName:    c.UserName,
			Excerpt:     string(excerpt),
		})
	}

	sent := 0
	for _, mod := range moderators {
		if mod.Email == nil {
			continue
		}
		if err := s.emailService.SendModerationDigest(*mod.Email, items); err != nil {
			log.Printf("Moderation digest: failed to send to %s: %v", *mod.Email, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Printf("Moderation digest: %d pending comments, %d moderators notified", len(pending), sent)
	}
}

// RunNow 立即发送一次摘要（用于测试或手动触发）
func (s *Service) RunNow() {
	s.sendDigest()
}
