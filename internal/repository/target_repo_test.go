package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/comment_go_server/internal/testutil"
)

func TestTargetRepository_GetByNaturalKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTargetRepository(db)

	target := testutil.TestTarget(t, db, testutil.WithObjectPK("42"))
	testutil.TestTarget(t, db, testutil.WithObjectPK("42"), testutil.WithSiteID(2))

	found, err := repo.GetByNaturalKey(target.ContentType, "42", 1)
	require.NoError(t, err)
	assert.Equal(t, target.ID, found.ID)

	_, err = repo.GetByNaturalKey(target.ContentType, "42", 3)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTargetRepository_IncrementCommentCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTargetRepository(db)

	target := testutil.TestTarget(t, db)

	require.NoError(t, repo.IncrementCommentCount(target.ID))
	require.NoError(t, repo.IncrementCommentCount(target.ID))

	found, err := repo.GetByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.CommentCount)
}
