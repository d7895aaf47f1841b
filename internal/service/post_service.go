package service

import (
	"context"
	"strings"
	"time"

	"proconnect/internal/middleware"
	"proconnect/internal/models"
	"proconnect/internal/observability"
	"proconnect/internal/repository"
	"proconnect/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreatePostInput struct {
	UserID  string `json:"-"`
	Content string `json:"content" validate:"required,max=5000"`
}

type UpdatePostInput struct {
	UserID  string `json:"-"`
	PostID  string `json:"-"`
	Content string `json:"content" validate:"required,max=5000"`
}

type DeletePostInput struct {
	UserID string
	PostID string
}

type AddCommentInput struct {
	UserID string `json:"-"`
	PostID string `json:"-"`
	Text   string `json:"text" validate:"required,max=1000"`
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to stamp posts and comments.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, end := observability.StartSpan(ctx, "PostService.CreatePost")
	defer func() { end(err) }()

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	post = &models.Post{
		UserID:    in.UserID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	middleware.PostEvents.WithLabelValues("created").Inc()

	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// ListPostsByAuthor returns one author's posts, newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return s.postRepo.ListByAuthor(ctx, authorID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, end := observability.StartSpan(ctx, "PostService.UpdatePost", attribute.String("post.id", in.PostID))
	defer func() { end(err) }()

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post, err = s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if err := s.postRepo.UpdateContent(ctx, in.PostID, in.UserID, in.Content); err != nil {
		return nil, err
	}
	middleware.PostEvents.WithLabelValues("updated").Inc()

	return s.postRepo.GetByID(ctx, in.PostID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, end := observability.StartSpan(ctx, "PostService.DeletePost", attribute.String("post.id", in.PostID))
	defer func() { end(err) }()

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID, in.UserID); err != nil {
		return err
	}
	middleware.PostEvents.WithLabelValues("deleted").Inc()
	return nil
}

// ToggleLike adds userID to the post's likes if absent and removes it otherwise.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (res *models.LikeResult, err error) {
	ctx, end := observability.StartSpan(ctx, "PostService.ToggleLike", attribute.String("post.id", postID))
	defer func() { end(err) }()

	res, err = s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if res.Liked {
		middleware.PostEvents.WithLabelValues("liked").Inc()
	} else {
		middleware.PostEvents.WithLabelValues("unliked").Inc()
	}
	return res, nil
}

// AddComment appends a comment and returns the post's full comment list.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (comments []models.Comment, err error) {
	ctx, end := observability.StartSpan(ctx, "PostService.AddComment", attribute.String("post.id", in.PostID))
	defer func() { end(err) }()

	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		UserID:    in.UserID,
		Text:      in.Text,
		CreatedAt: s.now(),
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	middleware.PostEvents.WithLabelValues("commented").Inc()

	return s.postRepo.ListComments(ctx, in.PostID)
}
