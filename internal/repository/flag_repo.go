package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/internal/model"
)

type FlagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// Create 创建反馈标记
func (r *FlagRepository) Create(flag *model.CommentFlag) error {
	return r.db.Create(flag).Error
}

// Delete 删除反馈标记
func (r *FlagRepository) Delete(commentID, userID int64, flag string) error {
	return r.db.Where("comment_id = ? AND user_id = ? AND flag = ?", commentID, userID, flag).
		Delete(&model.CommentFlag{}).Error
}

// Exists 检查反馈标记是否存在
func (r *FlagRepository) Exists(commentID, userID int64, flag string) (bool, error) {
	var count int64
	err := r.db.Model(&model.CommentFlag{}).
		Where("comment_id = ? AND user_id = ? AND flag = ?", commentID, userID, flag).
		Count(&count).Error
	return count > 0, err
}

// ListByCommentID 获取评论的全部反馈标记
func (r *FlagRepository) ListByCommentID(commentID int64) ([]*model.CommentFlag, error) {
	var flags []*model.CommentFlag
	err := r.db.Preload("User").Where("comment_id = ?", commentID).Find(&flags).Error
	return flags, err
}

// CountByCommentID 统计评论某类反馈的数量
func (r *FlagRepository) CountByCommentID(commentID int64, flag string) (int64, error) {
	var count int64
	err := r.db.Model(&model.CommentFlag{}).
		Where("comment_id = ? AND flag = ?", commentID, flag).
		Count(&count).Error
	return count, err
}
