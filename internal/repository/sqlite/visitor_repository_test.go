package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository/sqlite"
	"github.com/vytor/valentine/internal/testutil"
)

func TestVisitorRepository_Touch(t *testing.T) {
	conn := testutil.NewTestDB(t)
	defer testutil.MustClose(t, conn)

	ctx := context.Background()
	repo := sqlite.NewVisitorRepository(conn)

	missing, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := repo.Touch(ctx, "abc")
	require.NoError(t, err)
	second, err := repo.Touch(ctx, "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", second.ID)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.False(t, second.LastSeen.Before(first.LastSeen))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.ID)
}

func TestFeedbackRepository_Tally(t *testing.T) {
	conn := testutil.NewTestDB(t)
	defer testutil.MustClose(t, conn)

	ctx := context.Background()
	repo := sqlite.NewFeedbackRepository(conn)

	for _, answer := range []string{"yes", "yes", "no"} {
		id, err := repo.Insert(ctx, models.Feedback{VisitorID: "v", Answer: answer})
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))
	}

	_, err := repo.Insert(ctx, models.Feedback{VisitorID: "v", Answer: "maybe"})
	assert.Error(t, err, "check constraint rejects unknown answers")

	tally, err := repo.Tally(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"yes": 2, "no": 1}, tally)
}
