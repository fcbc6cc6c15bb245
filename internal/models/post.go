package models

import (
	"time"
)

// Post is an authored piece of content. UserID is always the requesting identity
// at creation and never changes afterwards.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ImageURL      string    `json:"image_url,omitempty"`
	UserID        uint      `gorm:"not null;index" json:"author_id"`
	User          User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author"`
	Tags          []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags"`
	PublishedDate time.Time `gorm:"index;not null" json:"published_date"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->;-:migration" json:"comments_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Tag labels posts and comments.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:60;not null" json:"slug"`
}
