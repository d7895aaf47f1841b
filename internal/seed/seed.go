// Package seed creates demo data for development databases. Everything is
// written through the services so the stored data obeys the same rules as
// data created over the API.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"proconnect/internal/auth"
	"proconnect/internal/middleware"
	"proconnect/internal/models"
	"proconnect/internal/repository"
	"proconnect/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options tunes how much engagement is generated per post.
type Options struct {
	// MaxDays spreads post timestamps over this many days back from now.
	MaxDays int
	// MaxLikes and MaxComments cap the engagement each post receives.
	MaxLikes    int
	MaxComments int
	// Seed makes the generated data reproducible when non-zero.
	Seed int64
}

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
}

type Seeder struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	opts    Options
	authSvc *service.AuthService
	postSvc *service.PostService
}

// NewSeeder builds a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.MaxLikes <= 0 {
		opts.MaxLikes = 10
	}
	if opts.MaxComments <= 0 {
		opts.MaxComments = 5
	}

	faker := gofakeit.New(opts.Seed)
	userRepo := repository.NewUserRepository(db)
	// Tokens are never issued while seeding
	tokens := auth.NewTokenManager("seed-only-secret", time.Hour)

	s := &Seeder{
		db:      db,
		faker:   faker,
		opts:    opts,
		authSvc: service.NewAuthService(userRepo, tokens),
	}
	// Backdate posts and comments so the feed looks lived-in
	s.postSvc = service.NewPostService(repository.NewPostRepository(db)).WithClock(s.pastTime)
	return s
}

func (s *Seeder) pastTime() time.Time {
	back := time.Duration(s.faker.Number(0, s.opts.MaxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// ClearAll removes every row the seeder can create.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		middleware.Logger.InfoContext(ctx, "Cleared seeded tables")
		return nil
	})
}

// SeedUsers registers n users, all with DefaultPassword.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		user, err := s.authSvc.Register(ctx, service.RegisterInput{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i, s.faker.DomainName()),
			Password: DefaultPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("register user %d: %w", i, err)
		}

		// Registration does not take a bio; set one the way a user would
		bio := s.faker.JobTitle() + " at " + s.faker.Company()
		if len(bio) > 500 {
			bio = bio[:500]
		}
		users = append(users, user)
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("bio", bio).Error; err != nil {
			return nil, fmt.Errorf("set bio for user %d: %w", i, err)
		}
		user.Bio = bio
	}
	return users, nil
}

// SeedEngagement creates nPosts posts by random authors, then likes and
// comments on them from other random users.
func (s *Seeder) SeedEngagement(ctx context.Context, users []*models.User, nPosts int) (Summary, error) {
	sum := Summary{Users: len(users)}
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < nPosts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		post, err := s.postSvc.CreatePost(ctx, service.CreatePostInput{
			UserID:  author.ID,
			Content: s.faker.Paragraph(1, 3, 8, " "),
		})
		if err != nil {
			return sum, fmt.Errorf("create post %d: %w", i, err)
		}
		sum.Posts++

		likers := s.pick(users, s.faker.Number(0, s.opts.MaxLikes))
		for _, u := range likers {
			res, err := s.postSvc.ToggleLike(ctx, u.ID, post.ID)
			if err != nil {
				return sum, fmt.Errorf("like post %d: %w", i, err)
			}
			if res.Liked {
				sum.Likes++
			}
		}

		for j := s.faker.Number(0, s.opts.MaxComments); j > 0; j-- {
			commenter := users[s.faker.Number(0, len(users)-1)]
			if _, err := s.postSvc.AddComment(ctx, service.AddCommentInput{
				UserID: commenter.ID,
				PostID: post.ID,
				Text:   s.faker.Sentence(s.faker.Number(3, 15)),
			}); err != nil {
				return sum, fmt.Errorf("comment on post %d: %w", i, err)
			}
			sum.Comments++
		}
	}

	middleware.Logger.InfoContext(ctx, "Seeded engagement",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// pick returns up to n distinct users in random order.
func (s *Seeder) pick(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	shuffled := make([]*models.User, len(users))
	copy(shuffled, users)
	s.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}
