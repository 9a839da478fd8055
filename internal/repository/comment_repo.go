package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDWithUser 获取评论及用户信息
func (r *CommentRepository) GetByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update 更新评论
func (r *CommentRepository) Update(comment *model.Comment) error {
	return r.db.Save(comment).Error
}

// FindEquivalent 查找目标下同一邮箱、同一正文、同一天提交的已有评论，用于幂等落库
// 只覆盖重复提交和确认链接重复兑现；已撤下的评论不参与去重，重新发表同样内容是新评论
func (r *CommentRepository) FindEquivalent(contentType, objectPK string, siteID int64, userEmail, body string, submitDate time.Time) (*model.Comment, error) {
	dayStart := time.Date(submitDate.Year(), submitDate.Month(), submitDate.Day(), 0, 0, 0, 0, submitDate.Location())

	var comment model.Comment
	err := r.db.Where(
		"content_type = ? AND object_pk = ? AND site_id = ? AND user_email = ? AND body = ? AND is_removed = ? AND submit_date >= ?",
		contentType, objectPK, siteID, userEmail, body, false, dayStart,
	).First(&comment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListByTarget 获取目标的一级公开评论列表，置顶优先
// 被移除的评论保留在列表中以维持回复树结构，正文由上层屏蔽
func (r *CommentRepository) ListByTarget(contentType, objectPK string, siteID int64, page, pageSize int) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.Model(&model.Comment{}).
		Preload("User").
		Preload("Flags").
		Preload("Flags.User").
		Where("content_type = ? AND object_pk = ? AND site_id = ? AND is_public = ? AND parent_id = 0",
			contentType, objectPK, siteID, true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("pinned_at IS NULL").Order("pinned_at DESC").Order("submit_date DESC").
		Offset(offset).Limit(pageSize).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// GetRepliesByParentIDs 批量获取回复
func (r *CommentRepository) GetRepliesByParentIDs(parentIDs []int64) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var replies []*model.Comment
	err := r.db.Preload("User").
		Preload("Flags").
		Preload("Flags.User").
		Where("parent_id IN ? AND is_public = ?", parentIDs, true).
		Order("submit_date ASC").
		Find(&replies).Error
	return replies, err
}

// CountByTarget 获取目标的可见评论数
func (r *CommentRepository) CountByTarget(contentType, objectPK string, siteID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("content_type = ? AND object_pk = ? AND site_id = ? AND is_public = ? AND is_removed = ?",
			contentType, objectPK, siteID, true, false).
		Count(&count).Error
	return count, err
}

// ListFollowerEmails 获取目标下勾选了后续提醒的去重邮箱，排除触发者自己
func (r *CommentRepository) ListFollowerEmails(contentType, objectPK string, siteID int64, excludeEmail string) ([]string, error) {
	var emails []string
	err := r.db.Model(&model.Comment{}).
		Distinct("user_email").
		Where("content_type = ? AND object_pk = ? AND site_id = ? AND followup = ? AND is_public = ? AND user_email <> ''",
			contentType, objectPK, siteID, true, true).
		Where("user_email <> ?", excludeEmail).
		Pluck("user_email", &emails).Error
	return emails, err
}

// ListPendingModeration 获取等待审核的评论
func (r *CommentRepository) ListPendingModeration(limit int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("is_public = ? AND is_removed = ?", false, false).
		Order("submit_date ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
