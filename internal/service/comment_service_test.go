package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/config"
	"github.com/qs3c/comment_go_server/internal/model"
	"github.com/qs3c/comment_go_server/internal/model/dto"
	"github.com/qs3c/comment_go_server/internal/pkg/hooks"
	"github.com/qs3c/comment_go_server/internal/pkg/secform"
	"github.com/qs3c/comment_go_server/internal/pkg/signed"
	"github.com/qs3c/comment_go_server/internal/repository"
	"github.com/qs3c/comment_go_server/internal/testutil"
)

const testFormSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Comments: config.CommentsConfig{
			Secret:             testFormSecret,
			Salt:               "comment-confirm",
			ConfirmEmail:       true,
			TimestampMaxAge:    3600,
			ConfirmExpireHours: 48,
			MaxLength:          3000,
			ConfirmURLBase:     "https://example.com/comments/confirm",
			Targets: map[string]config.TargetOptions{
				// 公开发布，允许两层回复
				"blog.post": {WhoCanPost: "all", AllowFeedback: true, AllowFlagging: true, MaxThreadLevel: 2, IsPublic: true},
				// 先审后发
				"news.article": {WhoCanPost: "all", AllowFeedback: true, AllowFlagging: false, MaxThreadLevel: 1, IsPublic: false},
				// 仅登录用户，不允许回复
				"wiki.page": {WhoCanPost: "users", AllowFeedback: false, AllowFlagging: false, MaxThreadLevel: 0, IsPublic: true},
			},
		},
	}
}

func newCommentService(t *testing.T, db *gorm.DB, mutate ...func(*config.Config)) *CommentService {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	reg := hooks.NewRegistry()
	reg.RegisterAuthorize(func(e *hooks.Event) hooks.CheckResult {
		if e.UserID != nil {
			return hooks.Approve
		}
		return hooks.NoOpinion
	})

	return NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewTargetRepository(db),
		repository.NewUserRepository(db),
		reg,
		nil,
		nil,
		cfg,
	)
}

func anonymousReq(target *model.Target) *dto.WriteCommentRequest {
	checker := secform.NewChecker(testFormSecret, 3600)
	ts, hash := checker.Generate(target.ContentType, target.ObjectPK)
	return &dto.WriteCommentRequest{
		ContentType:  target.ContentType,
		ObjectPK:     target.ObjectPK,
		SiteID:       target.SiteID,
		Comment:      "a thoughtful remark",
		Name:         "alice",
		Email:        "alice@example.com",
		Timestamp:    ts,
		SecurityHash: hash,
	}
}

func TestPublish_AnonymousSendsConfirmation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	result, err := svc.Publish(nil, anonymousReq(target), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StateConfirmationSent, result.State)
	assert.NotEmpty(t, result.Token)
	assert.Nil(t, result.Comment)

	// nothing persisted until the link is clicked
	var count int64
	db.Model(&model.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPublish_AnonymousWithoutConfirmation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db, func(cfg *config.Config) {
		cfg.Comments.ConfirmEmail = false
	})

	target := testutil.TestTarget(t, db)
	result, err := svc.Publish(nil, anonymousReq(target), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatePublished, result.State)
	require.NotNil(t, result.Comment)
	assert.Nil(t, result.Comment.UserID)
	assert.Equal(t, "alice", result.Comment.UserName)
	assert.True(t, result.Comment.IsPublic)
}

func TestPublish_AuthenticatedSkipsSecurityForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	target := testutil.TestTarget(t, db)

	// logged-in submissions carry no form fields at all
	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "logged in comment",
		Honeypot:    "should be ignored",
	}

	result, err := svc.Publish(&user.ID, req, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatePublished, result.State)
	require.NotNil(t, result.Comment)
	assert.Equal(t, user.ID, *result.Comment.UserID)
	assert.Equal(t, "bob", result.Comment.UserName)
}

func TestPublish_TamperedHashRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	req := anonymousReq(target)
	req.SecurityHash = req.SecurityHash + "00"

	_, err := svc.Publish(nil, req, "10.0.0.1")
	assert.Equal(t, ErrSecurityCheck, err)
}

func TestPublish_HashForOtherTargetRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	other := testutil.TestTarget(t, db)

	req := anonymousReq(other)
	req.ContentType = target.ContentType
	req.ObjectPK = target.ObjectPK

	_, err := svc.Publish(nil, req, "10.0.0.1")
	assert.Equal(t, ErrSecurityCheck, err)
}

func TestPublish_HoneypotRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	req := anonymousReq(target)
	req.Honeypot = "gotcha"

	_, err := svc.Publish(nil, req, "10.0.0.1")
	assert.Equal(t, ErrSecurityCheck, err)
}

func TestPublish_ExpiredTimestampRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	checker := secform.NewChecker(testFormSecret, 3600)
	ts, hash := checker.GenerateAt(target.ContentType, target.ObjectPK, time.Now().Add(-2*time.Hour).Unix())

	req := anonymousReq(target)
	req.Timestamp = ts
	req.SecurityHash = hash

	_, err := svc.Publish(nil, req, "10.0.0.1")
	assert.Equal(t, ErrSecurityCheck, err)
}

func TestPublish_ValidationErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)

	t.Run("unknown target", func(t *testing.T) {
		req := anonymousReq(target)
		req.ObjectPK = "999999"
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrTargetNotFound, err)
	})

	t.Run("malformed content type", func(t *testing.T) {
		req := anonymousReq(target)
		req.ContentType = "nodot"
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrInvalidContentType, err)
	})

	t.Run("empty body", func(t *testing.T) {
		req := anonymousReq(target)
		req.Comment = "   "
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrCommentRequired, err)
	})

	t.Run("editor empty markup", func(t *testing.T) {
		req := anonymousReq(target)
		req.Comment = "<p>&nbsp;</p><br>"
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrCommentRequired, err)
	})

	t.Run("body too long", func(t *testing.T) {
		req := anonymousReq(target)
		long := make([]rune, 3001)
		for i := range long {
			long[i] = '长'
		}
		req.Comment = string(long)
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrCommentTooLong, err)
	})

	t.Run("anonymous without name", func(t *testing.T) {
		req := anonymousReq(target)
		req.Name = ""
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrNameRequired, err)
	})

	t.Run("anonymous without email", func(t *testing.T) {
		req := anonymousReq(target)
		req.Email = "not-an-email"
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrEmailRequired, err)
	})

	t.Run("unknown comment type", func(t *testing.T) {
		req := anonymousReq(target)
		req.Type = "shout"
		_, err := svc.Publish(nil, req, "")
		assert.Equal(t, ErrInvalidCommentType, err)
	})
}

func TestPublish_UsersOnlyTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db, testutil.WithContentType("wiki.page"))

	_, err := svc.Publish(nil, anonymousReq(target), "")
	assert.Equal(t, ErrOnlyUsersCanPost, err)

	user := testutil.TestUser(t, db)
	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "members only",
	}
	result, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)
	assert.Equal(t, StatePublished, result.State)
}

func TestPublish_Threading(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	parent := testutil.TestComment(t, db, target)

	t.Run("reply gets level parent+1", func(t *testing.T) {
		req := &dto.WriteCommentRequest{
			ContentType: target.ContentType,
			ObjectPK:    target.ObjectPK,
			Comment:     "a reply",
			ReplyTo:     parent.ID,
		}
		result, err := svc.Publish(&user.ID, req, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Comment.Level)
		assert.Equal(t, parent.ID, result.Comment.ParentID)
	})

	t.Run("reply beyond max level rejected", func(t *testing.T) {
		deep := testutil.TestComment(t, db, target, testutil.WithParent(parent))
		deep.Level = 2 // max_thread_level for blog.post
		require.NoError(t, db.Save(deep).Error)

		req := &dto.WriteCommentRequest{
			ContentType: target.ContentType,
			ObjectPK:    target.ObjectPK,
			Comment:     "too deep",
			ReplyTo:     deep.ID,
		}
		_, err := svc.Publish(&user.ID, req, "")
		assert.Equal(t, ErrMaxThreadLevel, err)
	})

	t.Run("parent from another target rejected", func(t *testing.T) {
		other := testutil.TestTarget(t, db)
		req := &dto.WriteCommentRequest{
			ContentType: other.ContentType,
			ObjectPK:    other.ObjectPK,
			Comment:     "cross-target reply",
			ReplyTo:     parent.ID,
		}
		_, err := svc.Publish(&user.ID, req, "")
		assert.Equal(t, ErrParentNotInTarget, err)
	})

	t.Run("missing parent rejected", func(t *testing.T) {
		req := &dto.WriteCommentRequest{
			ContentType: target.ContentType,
			ObjectPK:    target.ObjectPK,
			Comment:     "orphan reply",
			ReplyTo:     999999,
		}
		_, err := svc.Publish(&user.ID, req, "")
		assert.Equal(t, ErrParentNotFound, err)
	})
}

func TestPublish_ModeratedTargetPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db, testutil.WithContentType("news.article"))

	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "needs review",
	}
	result, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)

	assert.Equal(t, StatePending, result.State)
	assert.False(t, result.Comment.IsPublic)
}

func TestPublish_VetoHookRejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)
	svc.hooks.RegisterWillBePosted(func(e *hooks.Event) hooks.CheckResult {
		return hooks.Veto
	})

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)

	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "spam spam spam",
	}
	_, err := svc.Publish(&user.ID, req, "")
	assert.Equal(t, ErrCommentRejected, err)
}

func TestPublish_DuplicateIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)

	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "double submit",
	}

	first, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)
	second, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)

	assert.Equal(t, first.Comment.ID, second.Comment.ID)

	var count int64
	db.Model(&model.Comment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPublish_RepostAfterWithdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)

	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "+1",
	}

	first, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)
	require.NoError(t, svc.Destroy(user.ID, first.Comment.ID))

	// reposting the same text after withdrawing must not resurrect the old row
	second, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Comment.ID, second.Comment.ID)
	assert.False(t, second.Comment.IsRemoved)

	var count int64
	db.Model(&model.Comment{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestPublish_AuthenticatedCustomName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	target := testutil.TestTarget(t, db)

	// a logged-in user may still sign with a display name of their own
	req := &dto.WriteCommentRequest{
		ContentType: target.ContentType,
		ObjectPK:    target.ObjectPK,
		Comment:     "signed differently",
		Name:        "Bobby Tables",
	}
	result, err := svc.Publish(&user.ID, req, "")
	require.NoError(t, err)
	assert.Equal(t, "Bobby Tables", result.Comment.UserName)
}

func TestConfirm_RedeemsToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	result, err := svc.Publish(nil, anonymousReq(target), "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, StateConfirmationSent, result.State)

	confirmed, err := svc.Confirm(result.Token)
	require.NoError(t, err)
	assert.Equal(t, StatePublished, confirmed.State)
	require.NotNil(t, confirmed.Comment)
	assert.Equal(t, "alice", confirmed.Comment.UserName)
	assert.Equal(t, "a thoughtful remark", confirmed.Comment.Body)
	assert.Nil(t, confirmed.Comment.UserID)

	// a second click must not create a duplicate
	again, err := svc.Confirm(result.Token)
	require.NoError(t, err)
	assert.Equal(t, confirmed.Comment.ID, again.Comment.ID)

	var count int64
	db.Model(&model.Comment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConfirm_InvalidToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	_, err := svc.Confirm("garbage")
	assert.Equal(t, signed.ErrInvalidToken, err)
}

func TestUpdate_EditBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target, testutil.WithAuthor(user))

	updated, err := svc.Update(user.ID, comment.ID, &dto.UpdateCommentRequest{Comment: "better wording"})
	require.NoError(t, err)

	assert.Equal(t, "better wording", updated.Body)
	assert.True(t, updated.IsEdited)
	assert.False(t, updated.IsRemoved)
}

func TestUpdate_EmptyBodyRemoves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target, testutil.WithAuthor(user))

	updated, err := svc.Update(user.ID, comment.ID, &dto.UpdateCommentRequest{Comment: "  "})
	require.NoError(t, err)

	assert.True(t, updated.IsRemoved)
	assert.True(t, updated.IsEdited)

	// record survives as a placeholder
	var stored model.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.True(t, stored.IsRemoved)
}

func TestUpdate_WithdrawnCommentRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target,
		testutil.WithAuthor(user),
		testutil.WithBody("original words"))

	require.NoError(t, svc.Destroy(user.ID, comment.ID))

	// a withdrawn comment cannot be rewritten by its author
	_, err := svc.Update(user.ID, comment.ID, &dto.UpdateCommentRequest{Comment: "sneaky rewrite"})
	assert.Equal(t, ErrCommentNotFound, err)

	var stored model.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.Equal(t, "original words", stored.Body)
	assert.True(t, stored.IsRemoved)
}

func TestUpdate_OnlyAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	author := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target, testutil.WithAuthor(author))

	_, err := svc.Update(stranger.ID, comment.ID, &dto.UpdateCommentRequest{Comment: "hijack"})
	assert.Equal(t, ErrCommentPermission, err)
}

func TestDestroy_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target, testutil.WithAuthor(user))

	require.NoError(t, svc.Destroy(user.ID, comment.ID))

	var stored model.Comment
	require.NoError(t, db.First(&stored, comment.ID).Error)
	assert.True(t, stored.IsRemoved)

	// idempotent
	require.NoError(t, svc.Destroy(user.ID, comment.ID))
}

func TestDestroy_ModeratorCanRemoveOthers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	author := testutil.TestUser(t, db)
	mod := testutil.TestUser(t, db, testutil.WithModerator())
	stranger := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target, testutil.WithAuthor(author))

	assert.Equal(t, ErrCommentPermission, svc.Destroy(stranger.ID, comment.ID))
	assert.NoError(t, svc.Destroy(mod.ID, comment.ID))
}

func TestPin_ModeratorToggle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	mod := testutil.TestUser(t, db, testutil.WithModerator())
	user := testutil.TestUser(t, db)
	target := testutil.TestTarget(t, db)
	comment := testutil.TestComment(t, db, target)

	_, err := svc.Pin(user.ID, comment.ID)
	assert.Equal(t, ErrNotModerator, err)

	pinned, err := svc.Pin(mod.ID, comment.ID)
	require.NoError(t, err)
	assert.NotNil(t, pinned.PinnedAt)

	unpinned, err := svc.Pin(mod.ID, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, unpinned.PinnedAt)
}

func TestList_TreeAndMasking(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	older := testutil.TestComment(t, db, target,
		testutil.WithBody("older top level"),
		testutil.WithSubmitDate(time.Now().Add(-time.Hour)))
	newer := testutil.TestComment(t, db, target, testutil.WithBody("newer top level"))
	removed := testutil.TestComment(t, db, target,
		testutil.WithBody("secret"),
		testutil.WithRemoved(),
		testutil.WithSubmitDate(time.Now().Add(-2*time.Hour)))
	testutil.TestComment(t, db, target, testutil.WithBody("reply"), testutil.WithParent(older))
	testutil.TestComment(t, db, target, testutil.WithBody("hidden"), testutil.WithPublic(false))

	items, total, err := svc.List(target.ContentType, target.ObjectPK, target.SiteID, 1, 20)
	require.NoError(t, err)

	// non-public excluded, removed kept as placeholder
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)
	assert.Equal(t, removed.ID, items[2].ID)

	assert.Equal(t, "该评论已被删除", items[2].Comment)
	assert.True(t, items[2].IsRemoved)
	assert.False(t, items[2].AllowReply)

	require.Len(t, items[1].Replies, 1)
	assert.Equal(t, "reply", items[1].Replies[0].Comment)
	assert.Equal(t, 1, items[1].Replies[0].Level)
}

func TestList_PinnedFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	mod := testutil.TestUser(t, db, testutil.WithModerator())
	target := testutil.TestTarget(t, db)
	old := testutil.TestComment(t, db, target, testutil.WithSubmitDate(time.Now().Add(-time.Hour)))
	testutil.TestComment(t, db, target)

	_, err := svc.Pin(mod.ID, old.ID)
	require.NoError(t, err)

	items, _, err := svc.List(target.ContentType, target.ObjectPK, target.SiteID, 1, 20)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, old.ID, items[0].ID)
	assert.NotEmpty(t, items[0].PinnedAt)
}

func TestCount_VisibleOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newCommentService(t, db)

	target := testutil.TestTarget(t, db)
	testutil.TestComment(t, db, target)
	testutil.TestComment(t, db, target, testutil.WithRemoved())
	testutil.TestComment(t, db, target, testutil.WithPublic(false))

	count, err := svc.Count(target.ContentType, target.ObjectPK, target.SiteID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.Count("blog.post", "999999", 1)
	assert.Equal(t, ErrTargetNotFound, err)
}
