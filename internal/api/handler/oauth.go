package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/comment_go_server/internal/pkg/oauth"
	"github.com/qs3c/comment_go_server/internal/pkg/response"
	"github.com/qs3c/comment_go_server/internal/service"
)

type OAuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewOAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *OAuthHandler {
	return &OAuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// GithubAuth 跳转到 GitHub 授权页
// GET /api/v1/auth/github
func (h *OAuthHandler) GithubAuth(c *gin.Context) {
	redirectURI := c.DefaultQuery("redirect_uri", "/")

	state, err := h.stateStore.GenerateState(c.Request.Context(), redirectURI)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"auth_url": h.authService.GetGithubAuthURL(state),
	})
}

// GithubCallback 处理 GitHub OAuth 回调
// GET /api/v1/auth/github/callback
func (h *OAuthHandler) GithubCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	redirectURI, err := h.stateStore.ValidateState(c.Request.Context(), state)
	if err != nil {
		response.ParamError(c, "state 无效或已过期")
		return
	}

	resp, err := h.authService.GithubCallback(c.Request.Context(), code)
	if err != nil {
		response.ServerError(c, "GitHub 登录失败")
		return
	}

	response.Success(c, gin.H{
		"token":        resp.Token,
		"user":         resp.User,
		"redirect_uri": redirectURI,
	})
}
