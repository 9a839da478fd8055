package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/config"
	"github.com/qs3c/comment_go_server/internal/model"
	"github.com/qs3c/comment_go_server/internal/repository"
)

var (
	ErrInvalidFlag        = errors.New("未知的反馈类型")
	ErrFeedbackNotAllowed = errors.New("该目标不允许点赞/点踩")
	ErrFlaggingNotAllowed = errors.New("该目标不允许举报")
)

type FeedbackService struct {
	flagRepo    *repository.FlagRepository
	commentRepo *repository.CommentRepository
	cfg         *config.Config
}

func NewFeedbackService(
	flagRepo *repository.FlagRepository,
	commentRepo *repository.CommentRepository,
	cfg *config.Config,
) *FeedbackService {
	return &FeedbackService{
		flagRepo:    flagRepo,
		commentRepo: commentRepo,
		cfg:         cfg,
	}
}

// Toggle 点赞/点踩开关：不存在则创建，已存在则撤销
// 同一用户对同一评论的赞和踩互斥，创建一方会先清掉另一方
func (s *FeedbackService) Toggle(userID, commentID int64, flag string) (created bool, err error) {
	if flag != model.FlagLike && flag != model.FlagDislike {
		return false, ErrInvalidFlag
	}

	comment, err := s.visibleComment(commentID)
	if err != nil {
		return false, err
	}

	opts := s.cfg.Comments.OptionsFor(comment.ContentType)
	if !opts.AllowFeedback {
		return false, ErrFeedbackNotAllowed
	}

	exists, err := s.flagRepo.Exists(commentID, userID, flag)
	if err != nil {
		return false, err
	}
	if exists {
		return false, s.flagRepo.Delete(commentID, userID, flag)
	}

	opposite := model.FlagDislike
	if flag == model.FlagDislike {
		opposite = model.FlagLike
	}
	if err := s.flagRepo.Delete(commentID, userID, opposite); err != nil {
		return false, err
	}

	err = s.flagRepo.Create(&model.CommentFlag{
		CommentID: commentID,
		UserID:    userID,
		Flag:      flag,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Report 举报评论，重复举报幂等
func (s *FeedbackService) Report(userID, commentID int64) error {
	comment, err := s.visibleComment(commentID)
	if err != nil {
		return err
	}

	opts := s.cfg.Comments.OptionsFor(comment.ContentType)
	if !opts.AllowFlagging {
		return ErrFlaggingNotAllowed
	}

	exists, err := s.flagRepo.Exists(commentID, userID, model.FlagRemoval)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.flagRepo.Create(&model.CommentFlag{
		CommentID: commentID,
		UserID:    userID,
		Flag:      model.FlagRemoval,
	})
}

// visibleComment 反馈只能落在公开且未移除的评论上
func (s *FeedbackService) visibleComment(commentID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if !comment.IsPublic || comment.IsRemoved {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
