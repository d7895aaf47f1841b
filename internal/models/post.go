package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a post authored by a user.
// Likes and comments are child rows owned by the post and removed with it.
type Post struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	UserID   string `gorm:"type:varchar(36);not null;index" json:"-"`
	Author   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LikeRows []Like `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	// User and Likes are filled by Hydrate from the preloaded relations
	User      AuthorSummary `gorm:"-" json:"user"`
	Likes     []string      `gorm:"-" json:"likes"`
	Comments  []Comment     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// BeforeCreate assigns an ID when the caller did not.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Hydrate flattens the preloaded author, like rows and comment authors into
// their serialized shapes.
func (p *Post) Hydrate() {
	if p.Author != nil {
		p.User = AuthorSummary{ID: p.Author.ID, Name: p.Author.Name, Bio: p.Author.Bio}
	} else {
		p.User = AuthorSummary{ID: p.UserID}
	}

	p.Likes = make([]string, 0, len(p.LikeRows))
	for _, l := range p.LikeRows {
		p.Likes = append(p.Likes, l.UserID)
	}

	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	for i := range p.Comments {
		p.Comments[i].Hydrate()
	}
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Like is one user's like on a post. The composite primary key keeps the
// like set free of duplicates.
type Like struct {
	PostID    string    `gorm:"type:varchar(36);primaryKey" json:"postId"`
	UserID    string    `gorm:"type:varchar(36);primaryKey;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is an immutable remark appended to a post.
type Comment struct {
	ID        string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	PostID    string           `gorm:"type:varchar(36);not null;index" json:"-"`
	UserID    string           `gorm:"type:varchar(36);not null" json:"-"`
	Author    *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	User      CommenterSummary `gorm:"-" json:"user"`
	Text      string           `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`
}

// BeforeCreate assigns an ID when the caller did not.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Hydrate fills the serialized author from the preloaded relation.
func (c *Comment) Hydrate() {
	if c.Author != nil {
		c.User = CommenterSummary{ID: c.Author.ID, Name: c.Author.Name}
	} else {
		c.User = CommenterSummary{ID: c.UserID}
	}
}

// LikeResult is the outcome of toggling a like.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}
