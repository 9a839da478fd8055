package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%1000000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithModerator 设置版主身份
func WithModerator() func(*model.User) {
	return func(u *model.User) {
		u.IsModerator = true
	}
}

// TestTarget 创建测试评论目标
func TestTarget(t *testing.T, db *gorm.DB, opts ...func(*model.Target)) *model.Target {
	t.Helper()

	target := &model.Target{
		ContentType: "blog.post",
		ObjectPK:    fmt.Sprintf("%d", time.Now().UnixNano()%1000000),
		SiteID:      1,
		Title:       "Test Post",
		URL:         "https://example.com/blog/test",
	}

	for _, opt := range opts {
		opt(target)
	}

	if err := db.Create(target).Error; err != nil {
		t.Fatalf("Failed to create test target: %v", err)
	}

	return target
}

// WithContentType 设置目标类型
func WithContentType(contentType string) func(*model.Target) {
	return func(tg *model.Target) {
		tg.ContentType = contentType
	}
}

// WithObjectPK 设置目标对象主键
func WithObjectPK(objectPK string) func(*model.Target) {
	return func(tg *model.Target) {
		tg.ObjectPK = objectPK
	}
}

// WithSiteID 设置站点
func WithSiteID(siteID int64) func(*model.Target) {
	return func(tg *model.Target) {
		tg.SiteID = siteID
	}
}

// WithTargetTitle 设置目标标题
func WithTargetTitle(title string) func(*model.Target) {
	return func(tg *model.Target) {
		tg.Title = title
	}
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, target *model.Target, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		SiteID:      target.SiteID,
		UserName:    "anonymous tester",
		UserEmail:   fmt.Sprintf("commenter_%d@example.com", time.Now().UnixNano()),
		Body:        fmt.Sprintf("test comment %d", time.Now().UnixNano()),
		Type:        model.CommentTypeNormal,
		SubmitDate:  time.Now(),
		IsPublic:    true,
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// WithAuthor 设置评论作者为注册用户
func WithAuthor(user *model.User) func(*model.Comment) {
	return func(c *model.Comment) {
		c.UserID = &user.ID
		c.UserName = user.Username
		if user.Email != nil {
			c.UserEmail = *user.Email
		}
	}
}

// WithAnonymous 设置匿名作者
func WithAnonymous(name, email string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.UserID = nil
		c.UserName = name
		c.UserEmail = email
	}
}

// WithBody 设置评论正文
func WithBody(body string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.Body = body
	}
}

// WithParent 设置父评论并推导层级
func WithParent(parent *model.Comment) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParentID = parent.ID
		c.Level = parent.Level + 1
	}
}

// WithPublic 设置公开状态
func WithPublic(public bool) func(*model.Comment) {
	return func(c *model.Comment) {
		c.IsPublic = public
	}
}

// WithFollowup 勾选后续提醒
func WithFollowup() func(*model.Comment) {
	return func(c *model.Comment) {
		c.Followup = true
	}
}

// WithRemoved 设置移除状态
func WithRemoved() func(*model.Comment) {
	return func(c *model.Comment) {
		c.IsRemoved = true
	}
}

// WithSubmitDate 设置提交时间
func WithSubmitDate(at time.Time) func(*model.Comment) {
	return func(c *model.Comment) {
		c.SubmitDate = at
	}
}

// TestFlag 创建测试反馈标记
func TestFlag(t *testing.T, db *gorm.DB, comment *model.Comment, user *model.User, flag string) *model.CommentFlag {
	t.Helper()

	cf := &model.CommentFlag{
		CommentID: comment.ID,
		UserID:    user.ID,
		Flag:      flag,
	}

	if err := db.Create(cf).Error; err != nil {
		t.Fatalf("Failed to create test flag: %v", err)
	}

	return cf
}
