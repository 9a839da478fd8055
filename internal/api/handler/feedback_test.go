package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/internal/model"
	"github.com/qs3c/comment_go_server/internal/model/dto"
	"github.com/qs3c/comment_go_server/internal/pkg/response"
	"github.com/qs3c/comment_go_server/internal/repository"
	"github.com/qs3c/comment_go_server/internal/service"
	"github.com/qs3c/comment_go_server/internal/testutil"
)

func setupFeedbackHandler(t *testing.T) (*FeedbackHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := service.NewFeedbackService(
		repository.NewFlagRepository(db),
		repository.NewCommentRepository(db),
		handlerTestConfig(),
	)

	return NewFeedbackHandler(svc), db, func() {
		testutil.CleanupTestDB(t, db)
	}
}

func feedbackRouter(h *FeedbackHandler, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	grp := r.Group("/comments")
	grp.Use(mockAuth(userID))
	grp.POST("/feedback", h.Toggle)
	grp.POST("/flag", h.Report)

	return r
}

func TestFeedbackHandler_Toggle(t *testing.T) {
	h, db, cleanup := setupFeedbackHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := feedbackRouter(h, user.ID)

	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target)

	w := performRequest(router, "POST", "/comments/feedback",
		&dto.FlagRequest{CommentID: comment.ID, Flag: model.FlagLike})
	assert.Equal(t, http.StatusCreated, w.Code)

	// second request withdraws the like
	w = performRequest(router, "POST", "/comments/feedback",
		&dto.FlagRequest{CommentID: comment.ID, Flag: model.FlagLike})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFeedbackHandler_Toggle_InvalidFlag(t *testing.T) {
	h, db, cleanup := setupFeedbackHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := feedbackRouter(h, user.ID)

	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target)

	w := performRequest(router, "POST", "/comments/feedback",
		&dto.FlagRequest{CommentID: comment.ID, Flag: "removal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestFeedbackHandler_Toggle_MissingComment(t *testing.T) {
	h, db, cleanup := setupFeedbackHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := feedbackRouter(h, user.ID)

	w := performRequest(router, "POST", "/comments/feedback",
		&dto.FlagRequest{CommentID: 999999, Flag: model.FlagLike})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackHandler_Report(t *testing.T) {
	h, db, cleanup := setupFeedbackHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := feedbackRouter(h, user.ID)

	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target)

	// 客户端可以用 report 或 removal 两种写法
	w := performRequest(router, "POST", "/comments/flag",
		&dto.FlagRequest{CommentID: comment.ID, Flag: "report"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// repeated report is idempotent
	w = performRequest(router, "POST", "/comments/flag",
		&dto.FlagRequest{CommentID: comment.ID, Flag: "removal"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&model.CommentFlag{}).
		Where("comment_id = ? AND flag = ?", comment.ID, model.FlagRemoval).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFeedbackHandler_Report_NotAllowed(t *testing.T) {
	h, db, cleanup := setupFeedbackHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := feedbackRouter(h, user.ID)

	target := testutil.TestTarget(t, db, testutil.WithContentType("news.article"))
	comment := testutil.TestComment(t, db, target)

	w := performRequest(router, "POST", "/comments/flag",
		&dto.FlagRequest{CommentID: comment.ID, Flag: "report"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
