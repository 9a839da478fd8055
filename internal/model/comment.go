package model

import (
	"time"
)

// 评论类型
const (
	CommentTypeNormal = "normal" // 普通评论
	CommentTypeRemind = "remind" // 催一催
)

type Comment struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	ContentType string     `gorm:"size:100;not null;index:idx_comments_target" json:"content_type"`
	ObjectPK    string     `gorm:"column:object_pk;size:64;not null;index:idx_comments_target" json:"object_pk"`
	SiteID      int64      `gorm:"not null;default:1;index:idx_comments_target" json:"site_id"`
	UserID      *int64     `gorm:"index" json:"user_id,omitempty"` // 匿名评论为 NULL
	UserName    string     `gorm:"size:50;not null" json:"user_name"`
	UserEmail   string     `gorm:"size:100;not null" json:"-"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	Type        string     `gorm:"size:20;not null;default:normal" json:"type"`
	Followup    bool       `gorm:"default:false" json:"-"` // 是否订阅后续评论通知
	SubmitDate  time.Time  `gorm:"index" json:"submit_date"`
	IsPublic    bool       `gorm:"default:true" json:"is_public"`
	IsRemoved   bool       `gorm:"default:false" json:"is_removed"`
	IsEdited    bool       `gorm:"default:false" json:"is_edited"`
	PinnedAt    *time.Time `gorm:"index" json:"pinned_at,omitempty"`
	Level       int        `gorm:"default:0" json:"level"`
	ParentID    int64      `gorm:"default:0;index" json:"parent_id"` // 0 表示顶层评论
	IPAddress   string     `gorm:"size:45" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 关联
	User  *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Flags []*CommentFlag `gorm:"foreignKey:CommentID" json:"flags,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// AllowReply 当前层级是否还允许继续回复
func (c *Comment) AllowReply(maxThreadLevel int) bool {
	return c.Level < maxThreadLevel
}
