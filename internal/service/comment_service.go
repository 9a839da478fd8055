package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/config"
	"github.com/qs3c/comment_go_server/internal/model"
	"github.com/qs3c/comment_go_server/internal/model/dto"
	"github.com/qs3c/comment_go_server/internal/pkg/hooks"
	"github.com/qs3c/comment_go_server/internal/pkg/pubsub"
	"github.com/qs3c/comment_go_server/internal/pkg/queue"
	"github.com/qs3c/comment_go_server/internal/pkg/secform"
	"github.com/qs3c/comment_go_server/internal/pkg/signed"
	"github.com/qs3c/comment_go_server/internal/repository"
)

var (
	ErrTargetNotFound     = errors.New("评论目标不存在")
	ErrInvalidContentType = errors.New("content_type 格式错误")
	ErrCommentRequired    = errors.New("评论内容不能为空")
	ErrCommentTooLong     = errors.New("评论内容超出长度限制")
	ErrNameRequired       = errors.New("匿名评论必须填写昵称")
	ErrEmailRequired      = errors.New("匿名评论必须填写有效邮箱")
	ErrOnlyUsersCanPost   = errors.New("该目标仅允许登录用户评论")
	ErrInvalidCommentType = errors.New("未知的评论类型")
	ErrParentNotFound     = errors.New("父评论不存在")
	ErrParentNotInTarget  = errors.New("父评论不属于该目标")
	ErrMaxThreadLevel     = errors.New("回复层级已达上限")
	ErrSecurityCheck      = errors.New("安全校验失败")
	ErrCommentRejected    = errors.New("评论被拒绝")
	ErrCommentNotFound    = errors.New("评论不存在")
	ErrCommentPermission  = errors.New("无权操作此评论")
	ErrNotModerator       = errors.New("仅版主可执行此操作")
)

// 移除评论对外展示的占位正文
const removedBodyMask = "该评论已被删除"

// PublishState 提交评论的最终去向
type PublishState int

const (
	StatePublished        PublishState = iota // 已公开发布
	StatePending                              // 已落库，等待审核
	StateConfirmationSent                     // 确认邮件已发送，尚未落库
)

// PublishResult 提交评论的处理结果
type PublishResult struct {
	State   PublishState
	Comment *model.Comment
	Token   string // 仅 StateConfirmationSent 时有值
}

type CommentService struct {
	commentRepo *repository.CommentRepository
	targetRepo  *repository.TargetRepository
	userRepo    *repository.UserRepository
	hooks       *hooks.Registry
	checker     *secform.Checker
	mailQueue   *queue.Queue
	publisher   *pubsub.Publisher
	cfg         *config.Config
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	targetRepo *repository.TargetRepository,
	userRepo *repository.UserRepository,
	reg *hooks.Registry,
	mailQueue *queue.Queue,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		targetRepo:  targetRepo,
		userRepo:    userRepo,
		hooks:       reg,
		checker:     secform.NewChecker(cfg.Comments.Secret, cfg.Comments.TimestampMaxAge),
		mailQueue:   mailQueue,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Form 下发评论表单的安全字段
func (s *CommentService) Form(contentType, objectPK string, siteID int64) (*dto.CommentFormResponse, error) {
	if _, err := s.resolveTarget(contentType, objectPK, siteID); err != nil {
		return nil, err
	}

	timestamp, hash := s.checker.Generate(contentType, objectPK)
	return &dto.CommentFormResponse{
		Timestamp:    timestamp,
		SecurityHash: hash,
	}, nil
}

// Publish 处理评论提交的完整流程：
// 校验目标与内容 → 授权钩子 → 防篡改校验 → 线程层级 → 落库前钩子 → 落库或发确认邮件
func (s *CommentService) Publish(userID *int64, req *dto.WriteCommentRequest, clientIP string) (*PublishResult, error) {
	target, err := s.resolveTarget(req.ContentType, req.ObjectPK, siteOrDefault(req.SiteID))
	if err != nil {
		return nil, err
	}
	opts := s.cfg.Comments.OptionsFor(target.ContentType)

	// 作者身份
	var user *model.User
	if userID != nil {
		user, err = s.userRepo.GetByID(*userID)
		if err != nil {
			return nil, err
		}
	}
	if opts.WhoCanPost == "users" && user == nil {
		return nil, ErrOnlyUsersCanPost
	}

	// 登录用户填写的昵称优先，留空时回退到用户名
	name, email := req.Name, strings.TrimSpace(req.Email)
	if user != nil {
		if strings.TrimSpace(name) == "" {
			name = user.Username
		}
		if user.Email != nil {
			email = *user.Email
		}
	} else {
		if strings.TrimSpace(name) == "" {
			return nil, ErrNameRequired
		}
		if !strings.Contains(email, "@") {
			return nil, ErrEmailRequired
		}
	}

	body, err := s.normalizeBody(req.Comment)
	if err != nil {
		return nil, err
	}

	ctype := req.Type
	if ctype == "" {
		ctype = model.CommentTypeNormal
	}
	if ctype != model.CommentTypeNormal && ctype != model.CommentTypeRemind {
		return nil, ErrInvalidCommentType
	}

	// 线程层级
	level, parentID, err := s.resolveThread(target, req.ReplyTo, opts.MaxThreadLevel)
	if err != nil {
		return nil, err
	}

	// 授权钩子放行的请求视为可信来源，注入新鲜安全字段
	event := &hooks.Event{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		SiteID:      target.SiteID,
		UserID:      userID,
	}
	timestamp, hash, honeypot := req.Timestamp, req.SecurityHash, req.Honeypot
	if s.hooks.Authorized(event) {
		timestamp, hash = s.checker.Generate(target.ContentType, target.ObjectPK)
		honeypot = ""
	}

	if honeypot != "" {
		return nil, ErrSecurityCheck
	}
	if err := s.checker.Verify(target.ContentType, target.ObjectPK, timestamp, hash); err != nil {
		return nil, ErrSecurityCheck
	}

	submitDate := time.Now()
	comment := &model.Comment{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		SiteID:      target.SiteID,
		UserID:      userID,
		UserName:    name,
		UserEmail:   email,
		Body:        body,
		Type:        ctype,
		Followup:    req.Followup,
		SubmitDate:  submitDate,
		IsPublic:    opts.IsPublic,
		Level:       level,
		ParentID:    parentID,
		IPAddress:   clientIP,
	}

	event.Comment = comment
	if !s.hooks.AllowPosting(event) {
		return nil, ErrCommentRejected
	}

	// 匿名评论需要先通过邮件确认，评论内容随签名 token 往返，不落库
	if user == nil && s.cfg.Comments.ConfirmEmail {
		payload := &signed.CommentPayload{
			ContentType: target.ContentType,
			ObjectPK:    target.ObjectPK,
			SiteID:      target.SiteID,
			UserName:    name,
			UserEmail:   email,
			Body:        body,
			Type:        ctype,
			Followup:    req.Followup,
			ReplyTo:     parentID,
			IPAddress:   clientIP,
			SubmitDate:  submitDate,
		}
		token, err := signed.Dumps(payload, s.cfg.Comments.Secret, s.cfg.Comments.Salt, s.cfg.Comments.ConfirmExpireHours)
		if err != nil {
			return nil, err
		}

		s.enqueueMail(&queue.MailMessage{
			Kind:       queue.MailConfirmation,
			To:         email,
			ConfirmURL: s.cfg.Comments.ConfirmURLBase + "/" + token,
		})

		return &PublishResult{State: StateConfirmationSent, Token: token}, nil
	}

	return s.persist(comment, target)
}

// Confirm 用确认 token 兑现待发布的匿名评论，重复点击幂等
func (s *CommentService) Confirm(token string) (*PublishResult, error) {
	payload, err := signed.Loads(token, s.cfg.Comments.Secret, s.cfg.Comments.Salt)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(payload.ContentType, payload.ObjectPK, payload.SiteID)
	if err != nil {
		return nil, err
	}
	opts := s.cfg.Comments.OptionsFor(target.ContentType)

	// 已兑现过的 token 直接返回已有评论
	existing, err := s.commentRepo.FindEquivalent(
		target.ContentType, target.ObjectPK, target.SiteID, payload.UserEmail, payload.Body, payload.SubmitDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.resultFor(existing), nil
	}

	// 父评论可能在确认期间被移除，重新推导层级
	level := 0
	parentID := int64(0)
	if payload.ReplyTo != 0 {
		level, parentID, err = s.resolveThread(target, payload.ReplyTo, opts.MaxThreadLevel)
		if err != nil {
			return nil, err
		}
	}

	comment := &model.Comment{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		SiteID:      target.SiteID,
		UserName:    payload.UserName,
		UserEmail:   payload.UserEmail,
		Body:        payload.Body,
		Type:        payload.Type,
		Followup:    payload.Followup,
		SubmitDate:  payload.SubmitDate,
		IsPublic:    opts.IsPublic,
		Level:       level,
		ParentID:    parentID,
		IPAddress:   payload.IPAddress,
	}

	event := &hooks.Event{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		SiteID:      target.SiteID,
		Comment:     comment,
	}
	s.hooks.Notify(hooks.EventConfirmationReceived, event)
	if !s.hooks.AllowPosting(event) {
		return nil, ErrCommentRejected
	}

	return s.persist(comment, target)
}

// persist 幂等落库：同一目标、同一邮箱、同一正文的当天重复提交复用已有评论
func (s *CommentService) persist(comment *model.Comment, target *model.Target) (*PublishResult, error) {
	existing, err := s.commentRepo.FindEquivalent(
		comment.ContentType, comment.ObjectPK, comment.SiteID, comment.UserEmail, comment.Body, comment.SubmitDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.resultFor(existing), nil
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	s.targetRepo.IncrementCommentCount(target.ID)

	event := &hooks.Event{
		ContentType: comment.ContentType,
		ObjectPK:    comment.ObjectPK,
		SiteID:      comment.SiteID,
		UserID:      comment.UserID,
		Comment:     comment,
	}
	s.hooks.Notify(hooks.EventPosted, event)

	if comment.IsPublic {
		s.notifyFollowers(comment, target)
		s.publishEvent(pubsub.EventCreated, comment)
	}

	return s.resultFor(comment), nil
}

func (s *CommentService) resultFor(comment *model.Comment) *PublishResult {
	state := StatePublished
	if !comment.IsPublic {
		state = StatePending
	}
	return &PublishResult{State: state, Comment: comment}
}

// List 获取目标的评论树，置顶优先，已移除评论保留占位
func (s *CommentService) List(contentType, objectPK string, siteID int64, page, pageSize int) ([]*dto.CommentItem, int64, error) {
	if _, err := s.resolveTarget(contentType, objectPK, siteOrDefault(siteID)); err != nil {
		return nil, 0, err
	}
	opts := s.cfg.Comments.OptionsFor(contentType)

	comments, total, err := s.commentRepo.ListByTarget(contentType, objectPK, siteOrDefault(siteID), page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.CommentItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, s.buildCommentItem(c, opts.MaxThreadLevel))
	}

	// 逐层批量加载回复，直到没有下一层
	frontier := items
	for len(frontier) > 0 {
		parentIDs := make([]int64, 0, len(frontier))
		byID := make(map[int64]*dto.CommentItem, len(frontier))
		for _, item := range frontier {
			parentIDs = append(parentIDs, item.ID)
			byID[item.ID] = item
		}

		replies, err := s.commentRepo.GetRepliesByParentIDs(parentIDs)
		if err != nil {
			return nil, 0, err
		}
		if len(replies) == 0 {
			break
		}

		next := make([]*dto.CommentItem, 0, len(replies))
		for _, reply := range replies {
			item := s.buildCommentItem(reply, opts.MaxThreadLevel)
			parent := byID[reply.ParentID]
			parent.Replies = append(parent.Replies, item)
			next = append(next, item)
		}
		frontier = next
	}

	return items, total, nil
}

// Count 获取目标的可见评论数
func (s *CommentService) Count(contentType, objectPK string, siteID int64) (int64, error) {
	if _, err := s.resolveTarget(contentType, objectPK, siteOrDefault(siteID)); err != nil {
		return 0, err
	}
	return s.commentRepo.CountByTarget(contentType, objectPK, siteOrDefault(siteID))
}

// Update 作者编辑评论，空正文等价于撤下评论
func (s *CommentService) Update(userID, commentID int64, req *dto.UpdateCommentRequest) (*model.Comment, error) {
	comment, err := s.getOwnComment(userID, commentID)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Comment)
	if strings.TrimSpace(emptyMarkup.Replace(body)) == "" {
		comment.Body = ""
		comment.IsRemoved = true
		comment.IsEdited = true
		if err := s.commentRepo.Update(comment); err != nil {
			return nil, err
		}
		s.notifyAndPublish(hooks.EventRemoved, pubsub.EventRemoved, comment)
		return comment, nil
	}

	if s.cfg.Comments.MaxLength > 0 && len([]rune(body)) > s.cfg.Comments.MaxLength {
		return nil, ErrCommentTooLong
	}

	comment.Body = body
	comment.IsEdited = true
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	s.notifyAndPublish(hooks.EventUpdated, pubsub.EventUpdated, comment)
	return comment, nil
}

// Destroy 软删除评论，保留记录与回复树
func (s *CommentService) Destroy(userID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if !s.canModify(userID, comment) {
		return ErrCommentPermission
	}

	if comment.IsRemoved {
		return nil
	}

	comment.IsRemoved = true
	if err := s.commentRepo.Update(comment); err != nil {
		return err
	}
	s.notifyAndPublish(hooks.EventRemoved, pubsub.EventRemoved, comment)
	return nil
}

// Pin 版主置顶/取消置顶
func (s *CommentService) Pin(userID, commentID int64) (*model.Comment, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsModerator {
		return nil, ErrNotModerator
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.PinnedAt != nil {
		comment.PinnedAt = nil
	} else {
		now := time.Now()
		comment.PinnedAt = &now
	}

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	s.notifyAndPublish(hooks.EventPinned, pubsub.EventPinned, comment)
	return comment, nil
}

func (s *CommentService) resolveTarget(contentType, objectPK string, siteID int64) (*model.Target, error) {
	if !strings.Contains(contentType, ".") || objectPK == "" {
		return nil, ErrInvalidContentType
	}

	target, err := s.targetRepo.GetByNaturalKey(contentType, objectPK, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return target, nil
}

func (s *CommentService) resolveThread(target *model.Target, replyTo int64, maxThreadLevel int) (level int, parentID int64, err error) {
	if replyTo == 0 {
		return 0, 0, nil
	}

	parent, err := s.commentRepo.GetByID(replyTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrParentNotFound
		}
		return 0, 0, err
	}

	if parent.ContentType != target.ContentType || parent.ObjectPK != target.ObjectPK || parent.SiteID != target.SiteID {
		return 0, 0, ErrParentNotInTarget
	}
	if !parent.AllowReply(maxThreadLevel) {
		return 0, 0, ErrMaxThreadLevel
	}

	return parent.Level + 1, parent.ID, nil
}

// 富文本编辑器提交的"空"内容只剩这些标记
var emptyMarkup = strings.NewReplacer("<p>", "", "</p>", "", "<br>", "", "<br/>", "", "&nbsp;", "")

func (s *CommentService) normalizeBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if strings.TrimSpace(emptyMarkup.Replace(body)) == "" {
		return "", ErrCommentRequired
	}
	if s.cfg.Comments.MaxLength > 0 && len([]rune(body)) > s.cfg.Comments.MaxLength {
		return "", ErrCommentTooLong
	}
	return body, nil
}

func (s *CommentService) getOwnComment(userID, commentID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID == nil || *comment.UserID != userID {
		return nil, ErrCommentPermission
	}
	// 已撤下的评论不再接受编辑
	if comment.IsRemoved {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// canModify 作者或版主可以删除评论
func (s *CommentService) canModify(userID int64, comment *model.Comment) bool {
	if comment.UserID != nil && *comment.UserID == userID {
		return true
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return false
	}
	return user.IsModerator
}

func (s *CommentService) buildCommentItem(c *model.Comment, maxThreadLevel int) *dto.CommentItem {
	item := &dto.CommentItem{
		ID:         c.ID,
		UserName:   c.UserName,
		Comment:    c.Body,
		SubmitDate: c.SubmitDate.Format(time.RFC3339),
		ParentID:   c.ParentID,
		Level:      c.Level,
		IsRemoved:  c.IsRemoved,
		IsEdited:   c.IsEdited,
		Type:       c.Type,
		AllowReply: !c.IsRemoved && c.AllowReply(maxThreadLevel),
		Flags:      make([]*dto.FlagItem, 0, len(c.Flags)),
	}

	if c.IsRemoved {
		item.Comment = removedBodyMask
	}
	if c.PinnedAt != nil {
		item.PinnedAt = c.PinnedAt.Format(time.RFC3339)
	}
	if c.User != nil {
		item.UserAvatar = c.User.AvatarURL
	}
	for _, f := range c.Flags {
		fi := &dto.FlagItem{Flag: f.Flag, UserID: f.UserID}
		if f.User != nil {
			fi.UserName = f.User.Username
		}
		item.Flags = append(item.Flags, fi)
	}

	return item
}

// notifyFollowers 给勾选了后续提醒的邮箱投递通知
func (s *CommentService) notifyFollowers(comment *model.Comment, target *model.Target) {
	emails, err := s.commentRepo.ListFollowerEmails(
		comment.ContentType, comment.ObjectPK, comment.SiteID, comment.UserEmail)
	if err != nil {
		return
	}

	excerpt := []rune(comment.Body)
	if len(excerpt) > 120 {
		excerpt = excerpt[:120]
	}

	for _, to := range emails {
		s.enqueueMail(&queue.MailMessage{
			Kind:        queue.MailFollowup,
			To:          to,
			TargetTitle: target.Title,
			TargetURL:   target.URL,
			Excerpt:     string(excerpt),
		})
	}
}

func (s *CommentService) notifyAndPublish(hookEvent, wsEvent string, comment *model.Comment) {
	s.hooks.Notify(hookEvent, &hooks.Event{
		ContentType: comment.ContentType,
		ObjectPK:    comment.ObjectPK,
		SiteID:      comment.SiteID,
		UserID:      comment.UserID,
		Comment:     comment,
	})
	s.publishEvent(wsEvent, comment)
}

func (s *CommentService) enqueueMail(msg *queue.MailMessage) {
	if s.mailQueue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.mailQueue.Push(ctx, msg)
}

func (s *CommentService) publishEvent(eventType string, comment *model.Comment) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	body := comment.Body
	if comment.IsRemoved {
		body = removedBodyMask
	}
	_ = s.publisher.PublishEvent(ctx, &pubsub.CommentEvent{
		Type:        eventType,
		CommentID:   comment.ID,
		ContentType: comment.ContentType,
		ObjectPK:    comment.ObjectPK,
		SiteID:      comment.SiteID,
		UserName:    comment.UserName,
		Body:        body,
		ParentID:    comment.ParentID,
		SubmitDate:  comment.SubmitDate.Format(time.RFC3339),
	})
}

func siteOrDefault(siteID int64) int64 {
	if siteID <= 0 {
		return 1
	}
	return siteID
}
