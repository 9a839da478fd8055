package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodePolicyViolation  = 1004
	CodeSecurityRejected = 1005
	CodeServerError      = 5000
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:          "success",
	CodeParamError:       "参数错误",
	CodeAuthFailed:       "认证失败",
	CodePermissionDenied: "权限不足",
	CodeResourceNotFound: "资源不存在",
	CodePolicyViolation:  "违反评论策略",
	CodeSecurityRejected: "安全校验失败",
	CodeServerError:      "服务器内部错误",
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageData 分页数据结构
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data: PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	})
}

// Created 资源创建成功（评论已发布）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Accepted 已受理但尚未公开（评论待审核）
func Accepted(c *gin.Context, message string) {
	c.JSON(http.StatusAccepted, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    nil,
	})
}

// NoContent 无响应体（确认邮件已发送 / 标记已移除）
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应，httpStatus 为真实 HTTP 状态码
func Error(c *gin.Context, httpStatus, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeAuthFailed, message)
}

// PermissionError 权限不足
func PermissionError(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodePermissionDenied, message)
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeResourceNotFound, message)
}

// PolicyError 评论被策略拒绝（落库前钩子否决）
func PolicyError(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodePolicyViolation, message)
}

// SecurityError 安全校验失败，不向客户端透露细节
func SecurityError(c *gin.Context) {
	Error(c, http.StatusForbidden, CodeSecurityRejected, "")
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeServerError, message)
}
