package model

import (
	"time"
)

// Target 被评论的内容对象，由宿主站点注册
type Target struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	ContentType  string    `gorm:"size:100;not null;uniqueIndex:idx_targets_ct_pk_site" json:"content_type"`
	ObjectPK     string    `gorm:"column:object_pk;size:64;not null;uniqueIndex:idx_targets_ct_pk_site" json:"object_pk"`
	SiteID       int64     `gorm:"not null;default:1;uniqueIndex:idx_targets_ct_pk_site" json:"site_id"`
	Title        string    `gorm:"size:255" json:"title"`
	URL          string    `gorm:"size:500" json:"url"`
	CommentCount int       `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Target) TableName() string {
	return "targets"
}
