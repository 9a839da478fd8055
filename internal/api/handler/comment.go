package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/comment_go_server/internal/api/middleware"
	"github.com/qs3c/comment_go_server/internal/model/dto"
	"github.com/qs3c/comment_go_server/internal/pkg/response"
	"github.com/qs3c/comment_go_server/internal/pkg/signed"
	"github.com/qs3c/comment_go_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Form 下发评论表单安全字段
// GET /api/v1/comments/form
func (h *CommentHandler) Form(c *gin.Context) {
	contentType := c.Query("content_type")
	objectPK := c.Query("object_pk")
	siteID, _ := strconv.ParseInt(c.DefaultQuery("site_id", "1"), 10, 64)

	form, err := h.commentService.Form(contentType, objectPK, siteID)
	if err != nil {
		switch err {
		case service.ErrInvalidContentType, service.ErrTargetNotFound:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, form)
}

// Create 提交评论
// POST /api/v1/comments
// 201 已发布 / 202 待审核 / 204 确认邮件已发送 / 400 校验失败 / 403 安全校验或策略拒绝
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.WriteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	userID := middleware.GetOptionalUserID(c)
	result, err := h.commentService.Publish(userID, &req, c.ClientIP())
	if err != nil {
		h.writePublishError(c, err)
		return
	}

	h.writePublishResult(c, result)
}

// Confirm 兑现匿名评论确认链接
// GET /api/v1/comments/confirm/:token
func (h *CommentHandler) Confirm(c *gin.Context) {
	result, err := h.commentService.Confirm(c.Param("token"))
	if err != nil {
		switch err {
		case signed.ErrInvalidToken, signed.ErrExpiredToken:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentRejected:
			response.PolicyError(c, err.Error())
		case service.ErrTargetNotFound, service.ErrParentNotFound,
			service.ErrParentNotInTarget, service.ErrMaxThreadLevel:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	h.writePublishResult(c, result)
}

// List 获取评论树
// GET /api/v1/comments
func (h *CommentHandler) List(c *gin.Context) {
	contentType := c.Query("content_type")
	objectPK := c.Query("object_pk")
	siteID, _ := strconv.ParseInt(c.DefaultQuery("site_id", "1"), 10, 64)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.commentService.List(contentType, objectPK, siteID, page, pageSize)
	if err != nil {
		switch err {
		case service.ErrInvalidContentType:
			response.ParamError(c, err.Error())
		case service.ErrTargetNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Count 获取评论数
// GET /api/v1/comments/count
func (h *CommentHandler) Count(c *gin.Context) {
	contentType := c.Query("content_type")
	objectPK := c.Query("object_pk")
	siteID, _ := strconv.ParseInt(c.DefaultQuery("site_id", "1"), 10, 64)

	count, err := h.commentService.Count(contentType, objectPK, siteID)
	if err != nil {
		switch err {
		case service.ErrInvalidContentType:
			response.ParamError(c, err.Error())
		case service.ErrTargetNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, &dto.CommentCountResponse{Count: count})
}

// Update 作者编辑评论，空正文等价于撤下
// PATCH /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(userID, commentID, &req)
	if err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		case service.ErrCommentTooLong:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	if comment.IsRemoved {
		response.NoContent(c)
		return
	}
	response.Success(c, comment)
}

// Delete 软删除评论
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.commentService.Destroy(userID, commentID); err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrCommentPermission:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.NoContent(c)
}

// Pin 版主置顶/取消置顶
// PATCH /api/v1/comments/:id/pin
func (h *CommentHandler) Pin(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	comment, err := h.commentService.Pin(userID, commentID)
	if err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrNotModerator:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	pinnedAt := ""
	if comment.PinnedAt != nil {
		pinnedAt = comment.PinnedAt.Format(time.RFC3339)
	}
	response.Success(c, gin.H{
		"id":        comment.ID,
		"pinned_at": pinnedAt,
	})
}

func (h *CommentHandler) writePublishResult(c *gin.Context, result *service.PublishResult) {
	switch result.State {
	case service.StatePublished:
		response.Created(c, result.Comment)
	case service.StatePending:
		response.Accepted(c, "评论已提交，等待审核")
	case service.StateConfirmationSent:
		response.NoContent(c)
	}
}

func (h *CommentHandler) writePublishError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidContentType, service.ErrTargetNotFound,
		service.ErrCommentRequired, service.ErrCommentTooLong,
		service.ErrNameRequired, service.ErrEmailRequired,
		service.ErrInvalidCommentType, service.ErrParentNotFound,
		service.ErrParentNotInTarget, service.ErrMaxThreadLevel:
		response.ParamError(c, err.Error())
	case service.ErrOnlyUsersCanPost:
		response.PermissionError(c, err.Error())
	case service.ErrSecurityCheck:
		response.SecurityError(c)
	case service.ErrCommentRejected:
		response.PolicyError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
