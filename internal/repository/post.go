package repository

import (
	"context"
	"errors"
	"time"

	"proconnect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	UpdateContent(ctx context.Context, id, authorID, content string) error
	Delete(ctx context.Context, id, authorID string) error
	ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails preloads everything a serialized post embeds.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("LikeRows", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.Author")
}

func hydrateAll(posts []*models.Post) []*models.Post {
	for _, p := range posts {
		p.Hydrate()
	}
	return posts
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStoreError(err)
	}
	post.Hydrate()
	return &post, nil
}

// List returns every post, newest first.
func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := withDetails(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return hydrateAll(posts), nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	var posts []*models.Post
	if err := withDetails(r.db.WithContext(ctx)).
		Where("user_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return hydrateAll(posts), nil
}

// UpdateContent replaces only the content column of a post owned by authorID.
// Likes and comments live in their own tables and are never rewritten.
func (r *postRepository) UpdateContent(ctx context.Context, id, authorID, content string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, authorID).
		Updates(map[string]any{"content": content})
	if result.Error != nil {
		return models.NewStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes a post owned by authorID together with its likes and comments.
func (r *postRepository) Delete(ctx context.Context, id, authorID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, authorID).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Rolls back the child deletes
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	return storeError(err)
}

// ToggleLike flips userID's membership in the post's like set in one
// transaction: a conditional delete, then an idempotent insert when nothing
// was deleted. The (post_id, user_id) primary key rules out duplicates even
// when two toggles race.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	res := &models.LikeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			like := models.Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			res.Liked = true
		}

		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&res.LikesCount).Error
	})
	if err != nil {
		return nil, storeError(err)
	}
	return res, nil
}

// AddComment appends a comment with a single insert; concurrent appends never
// drop each other.
func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, comment.PostID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	return storeError(err)
}

// ListComments returns a post's comments in creation order with authors resolved.
func (r *postRepository) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	for i := range comments {
		comments[i].Hydrate()
	}
	return comments, nil
}

func ensurePost(tx *gorm.DB, postID string) error {
	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
