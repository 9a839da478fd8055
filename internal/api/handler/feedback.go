package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/comment_go_server/internal/api/middleware"
	"github.com/qs3c/comment_go_server/internal/model/dto"
	"github.com/qs3c/comment_go_server/internal/pkg/response"
	"github.com/qs3c/comment_go_server/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// Toggle 点赞/点踩开关
// POST /api/v1/comments/feedback
// 201 已创建 / 204 已撤销
func (h *FeedbackHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	created, err := h.feedbackService.Toggle(userID, req.CommentID, req.Flag)
	if err != nil {
		switch err {
		case service.ErrInvalidFlag:
			response.ParamError(c, err.Error())
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrFeedbackNotAllowed:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	if created {
		response.Created(c, gin.H{"comment": req.CommentID, "flag": req.Flag})
		return
	}
	response.NoContent(c)
}

// Report 举报评论
// POST /api/v1/comments/flag
func (h *FeedbackHandler) Report(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if req.Flag != "report" && req.Flag != "removal" {
		response.ParamError(c, "未知的反馈类型")
		return
	}

	if err := h.feedbackService.Report(userID, req.CommentID); err != nil {
		switch err {
		case service.ErrCommentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrFlaggingNotAllowed:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, gin.H{"comment": req.CommentID, "flag": "removal"})
}
