package model

import (
	"time"
)

// 反馈标记类型
const (
	FlagLike    = "like"    // 点赞
	FlagDislike = "dislike" // 点踩
	FlagRemoval = "removal" // 举报（建议移除）
)

// CommentFlag 用户对评论的反馈标记
// (comment_id, user_id, flag) 三元组唯一
type CommentFlag struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CommentID int64     `gorm:"not null;uniqueIndex:idx_flags_comment_user_flag" json:"comment_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_flags_comment_user_flag" json:"user_id"`
	Flag      string    `gorm:"size:20;not null;uniqueIndex:idx_flags_comment_user_flag" json:"flag"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CommentFlag) TableName() string {
	return "comment_flags"
}
