package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/internal/model"
)

type TargetRepository struct {
	db *gorm.DB
}

func NewTargetRepository(db *gorm.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

// Create 注册评论目标
func (r *TargetRepository) Create(target *model.Target) error {
	return r.db.Create(target).Error
}

// GetByID 根据 ID 获取目标
func (r *TargetRepository) GetByID(id int64) (*model.Target, error) {
	var target model.Target
	err := r.db.Where("id = ?", id).First(&target).Error
	if err != nil {
		return nil, err
	}
	return &target, nil
}

// GetByNaturalKey 根据 (content_type, object_pk, site_id) 获取目标
func (r *TargetRepository) GetByNaturalKey(contentType, objectPK string, siteID int64) (*model.Target, error) {
	var target model.Target
	err := r.db.Where("content_type = ? AND object_pk = ? AND site_id = ?", contentType, objectPK, siteID).
		First(&target).Error
	if err != nil {
		return nil, err
	}
	return &target, nil
}

// Update 更新目标
func (r *TargetRepository) Update(target *model.Target) error {
	return r.db.Save(target).Error
}

// IncrementCommentCount 增加目标评论计数
func (r *TargetRepository) IncrementCommentCount(id int64) error {
	return r.db.Model(&model.Target{}).Where("id = ?", id).
		Update("comment_count", gorm.Expr("comment_count + 1")).Error
}

// List 分页获取目标列表
func (r *TargetRepository) List(page, pageSize int) ([]*model.Target, int64, error) {
	var targets []*model.Target
	var total int64

	query := r.db.Model(&model.Target{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&targets).Error
	if err != nil {
		return nil, 0, err
	}

	return targets, total, nil
}
