package seed

import (
	"context"
	"os"
	"testing"

	"proconnect/internal/auth"
	"proconnect/internal/models"
	"proconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestSeeder_SeedAndClear(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	s := NewSeeder(db, Options{Seed: 42, MaxLikes: 3, MaxComments: 2})

	users, err := s.SeedUsers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, users, 5)
	for _, u := range users {
		assert.NotEmpty(t, u.Bio)
		assert.NoError(t, auth.CheckPassword(u.Password, DefaultPassword))
	}

	sum, err := s.SeedEngagement(ctx, users, 8)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Users)
	assert.Equal(t, 8, sum.Posts)

	var posts, likes, comments int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.EqualValues(t, sum.Posts, posts)
	assert.EqualValues(t, sum.Likes, likes)
	assert.EqualValues(t, sum.Comments, comments)
	assert.LessOrEqual(t, likes, int64(8*3))

	require.NoError(t, s.ClearAll(ctx))
	var remaining int64
	require.NoError(t, db.Model(&models.User{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestSeeder_NoUsers(t *testing.T) {
	s := NewSeeder(testutil.NewSQLiteDB(t), Options{})

	sum, err := s.SeedEngagement(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}
