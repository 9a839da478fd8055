package dto

// WriteCommentRequest 提交评论请求
// timestamp/security_hash 由评论表单接口下发，匿名客户端必须原样带回
type WriteCommentRequest struct {
	ContentType  string `json:"content_type" binding:"required"`
	ObjectPK     string `json:"object_pk" binding:"required"`
	SiteID       int64  `json:"site_id"`
	Comment      string `json:"comment"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ReplyTo      int64  `json:"reply_to"`
	Followup     bool   `json:"followup"`
	Type         string `json:"type"`
	Honeypot     string `json:"honeypot"`
	Timestamp    string `json:"timestamp"`
	SecurityHash string `json:"security_hash"`
}

// CommentFormResponse 评论表单安全字段
type CommentFormResponse struct {
	Timestamp    string `json:"timestamp"`
	SecurityHash string `json:"security_hash"`
}

// CommentItem 评论项
type CommentItem struct {
	ID         int64          `json:"id"`
	UserName   string         `json:"user_name"`
	UserAvatar string         `json:"user_avatar"`
	Comment    string         `json:"comment"`
	SubmitDate string         `json:"submit_date"`
	ParentID   int64          `json:"parent_id"`
	Level      int            `json:"level"`
	IsRemoved  bool           `json:"is_removed"`
	IsEdited   bool           `json:"is_edited"`
	PinnedAt   string         `json:"pinned_at,omitempty"`
	Type       string         `json:"type"`
	AllowReply bool           `json:"allow_reply"`
	Flags      []*FlagItem    `json:"flags"`
	Replies    []*CommentItem `json:"replies,omitempty"`
}

// FlagItem 评论上的反馈标记
type FlagItem struct {
	Flag     string `json:"flag"`
	UserID   int64  `json:"id"`
	UserName string `json:"user"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Comment string `json:"comment"`
}

// FlagRequest 反馈/举报请求
type FlagRequest struct {
	CommentID int64  `json:"comment" binding:"required"`
	Flag      string `json:"flag" binding:"required"`
}

// CommentCountResponse 评论数响应
type CommentCountResponse struct {
	Count int64 `json:"count"`
}
