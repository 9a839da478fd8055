package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/comment_go_server/config"
	"github.com/qs3c/comment_go_server/internal/api/handler"
	"github.com/qs3c/comment_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	oauthHandler     *handler.OAuthHandler
	commentHandler   *handler.CommentHandler
	feedbackHandler  *handler.FeedbackHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	oauthHandler *handler.OAuthHandler,
	commentHandler *handler.CommentHandler,
	feedbackHandler *handler.FeedbackHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		oauthHandler:     oauthHandler,
		commentHandler:   commentHandler,
		feedbackHandler:  feedbackHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket 实时评论流
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.GET("/github", r.oauthHandler.GithubAuth)
			auth.GET("/github/callback", r.oauthHandler.GithubCallback)
		}

		// 评论 - 公开读取与提交（可选认证，匿名走邮件确认）
		comments := api.Group("/comments")
		comments.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			comments.GET("", r.commentHandler.List)
			comments.GET("/count", r.commentHandler.Count)
			comments.GET("/form", r.commentHandler.Form)
			comments.GET("/confirm/:token", r.commentHandler.Confirm)
			comments.POST("", r.commentHandler.Create)
		}

		// 评论 - 需要认证
		commentsAuth := api.Group("/comments")
		commentsAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			commentsAuth.PATCH("/:id", r.commentHandler.Update)
			commentsAuth.DELETE("/:id", r.commentHandler.Delete)
			commentsAuth.PATCH("/:id/pin", r.commentHandler.Pin)
			commentsAuth.POST("/feedback", r.feedbackHandler.Toggle)
			commentsAuth.POST("/flag", r.feedbackHandler.Report)
		}
	}

	return engine
}
