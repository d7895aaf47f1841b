package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"proconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, string) (*models.Post, error)
	listFn          func(context.Context) ([]*models.Post, error)
	listByAuthorFn  func(context.Context, string) ([]*models.Post, error)
	updateContentFn func(context.Context, string, string, string) error
	deleteFn        func(context.Context, string, string) error
	toggleLikeFn    func(context.Context, string, string) (*models.LikeResult, error)
	addCommentFn    func(context.Context, *models.Comment) error
	listCommentsFn  func(context.Context, string) ([]models.Comment, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) UpdateContent(ctx context.Context, id, authorID, content string) error {
	return s.updateContentFn(ctx, id, authorID, content)
}
func (s *postRepoStub) Delete(ctx context.Context, id, authorID string) error {
	return s.deleteFn(ctx, id, authorID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	return s.toggleLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.addCommentFn(ctx, comment)
}
func (s *postRepoStub) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.listCommentsFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:          func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		listByAuthorFn:  func(_ context.Context, _ string) ([]*models.Post, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _, _, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _, _ string) error { return nil },
		toggleLikeFn: func(_ context.Context, _, _ string) (*models.LikeResult, error) {
			return &models.LikeResult{}, nil
		},
		addCommentFn:   func(_ context.Context, _ *models.Comment) error { return nil },
		listCommentsFn: func(_ context.Context, _ string) ([]models.Comment, error) { return nil, nil },
	}
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo())

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t "},
		{"too long", strings.Repeat("x", 5001)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: tc.content})
			assertValidationError(t, err)
		})
	}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var stored *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = "p1"
		stored = p
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		require.Equal(t, "p1", id)
		return stored, nil
	}
	svc := NewPostService(repo).WithClock(func() time.Time { return fixed })

	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: "  Hello world  "})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", post.Content)
	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, fixed, post.CreatedAt)
	assert.Equal(t, fixed, post.UpdatedAt)

	// Exactly at the limit is accepted
	_, err = svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Content: strings.Repeat("x", 5000)})
	assert.NoError(t, err)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	owned := &models.Post{ID: "p1", UserID: "author", Content: "old"}

	tests := []struct {
		name     string
		input    UpdatePostInput
		getErr   error
		wantCode string
	}{
		{"blank content", UpdatePostInput{UserID: "author", PostID: "p1", Content: " "}, nil, models.CodeValidation},
		{"missing post", UpdatePostInput{UserID: "author", PostID: "p1", Content: "new"}, models.NewNotFoundError("Post", "p1"), models.CodeNotFound},
		{"not the author", UpdatePostInput{UserID: "intruder", PostID: "p1", Content: "new"}, nil, models.CodeForbidden},
		{"author", UpdatePostInput{UserID: "author", PostID: "p1", Content: "new"}, nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			updated := false
			repo := noopPostRepo()
			repo.getByIDFn = func(_ context.Context, _ string) (*models.Post, error) {
				if tc.getErr != nil {
					return nil, tc.getErr
				}
				cp := *owned
				if updated {
					cp.Content = "new"
				}
				return &cp, nil
			}
			repo.updateContentFn = func(_ context.Context, id, authorID, content string) error {
				assert.Equal(t, "p1", id)
				assert.Equal(t, "author", authorID)
				assert.Equal(t, "new", content)
				updated = true
				return nil
			}

			post, err := NewPostService(repo).UpdatePost(context.Background(), tc.input)
			if tc.wantCode != "" {
				assertCode(t, err, tc.wantCode)
				assert.False(t, updated)
				return
			}
			require.NoError(t, err)
			assert.True(t, updated)
			assert.Equal(t, "new", post.Content)
		})
	}
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: "author"}, nil
	}
	var deleted []string
	repo.deleteFn = func(_ context.Context, id, _ string) error {
		deleted = append(deleted, id)
		return nil
	}
	svc := NewPostService(repo)

	err := svc.DeletePost(context.Background(), DeletePostInput{UserID: "someone-else", PostID: "p1"})
	assertCode(t, err, models.CodeForbidden)
	assert.Empty(t, deleted)

	require.NoError(t, svc.DeletePost(context.Background(), DeletePostInput{UserID: "author", PostID: "p1"}))
	assert.Equal(t, []string{"p1"}, deleted)
}

func TestPostService_DeletePost_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	err := NewPostService(repo).DeletePost(context.Background(), DeletePostInput{UserID: "u1", PostID: "gone"})
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	liked := map[string]bool{}
	repo := noopPostRepo()
	repo.toggleLikeFn = func(_ context.Context, postID, userID string) (*models.LikeResult, error) {
		key := postID + "/" + userID
		liked[key] = !liked[key]
		count := int64(0)
		if liked[key] {
			count = 1
		}
		return &models.LikeResult{Liked: liked[key], LikesCount: count}, nil
	}
	svc := NewPostService(repo)

	res, err := svc.ToggleLike(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Liked: true, LikesCount: 1}, res)

	res, err = svc.ToggleLike(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Liked: false, LikesCount: 0}, res)
}

func TestPostService_ToggleLike_RepoError(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.toggleLikeFn = func(_ context.Context, _, _ string) (*models.LikeResult, error) {
		return nil, models.NewStoreError(errors.New("connection reset"))
	}
	_, err := NewPostService(repo).ToggleLike(context.Background(), "u1", "p1")
	assertCode(t, err, models.CodeStore)
}

func TestPostService_AddComment(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var comments []models.Comment
	repo := noopPostRepo()
	repo.addCommentFn = func(_ context.Context, c *models.Comment) error {
		c.ID = "c1"
		comments = append(comments, *c)
		return nil
	}
	repo.listCommentsFn = func(_ context.Context, postID string) ([]models.Comment, error) {
		assert.Equal(t, "p1", postID)
		return comments, nil
	}
	svc := NewPostService(repo).WithClock(func() time.Time { return fixed })

	got, err := svc.AddComment(context.Background(), AddCommentInput{UserID: "u1", PostID: "p1", Text: " Nice "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Nice", got[0].Text)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, fixed, got[0].CreatedAt)
}

func TestPostService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo())
	for _, text := range []string{"", "  ", strings.Repeat("y", 1001)} {
		_, err := svc.AddComment(context.Background(), AddCommentInput{UserID: "u1", PostID: "p1", Text: text})
		assertValidationError(t, err)
	}
}

func TestPostService_AddComment_UnknownPost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.addCommentFn = func(_ context.Context, c *models.Comment) error {
		return models.NewNotFoundError("Post", c.PostID)
	}
	_, err := NewPostService(repo).AddComment(context.Background(), AddCommentInput{UserID: "u1", PostID: "nope", Text: "hi"})
	assertCode(t, err, models.CodeNotFound)
}
