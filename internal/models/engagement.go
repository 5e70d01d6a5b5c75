package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Announcement struct {
	bun.BaseModel `bun:"table:announcements"`

	ID            string    `bun:"id,pk" json:"id"`
	EventID       string    `bun:"event_id" json:"event_id"`
	Title         string    `bun:"title" json:"title"`
	Content       string    `bun:"content" json:"content"`
	AllowComments bool      `bun:"allow_comments" json:"allow_comments"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
}

type Comment struct {
	bun.BaseModel `bun:"table:comments"`

	ID             string    `bun:"id,pk" json:"id"`
	AnnouncementID string    `bun:"announcement_id" json:"announcement_id"`
	AuthorName     string    `bun:"author_name" json:"author_name"`
	Content        string    `bun:"content" json:"content"`
	IsBlocked      bool      `bun:"is_blocked" json:"is_blocked"`
	CreatedAt      time.Time `bun:"created_at" json:"created_at"`
}

// InteractionLike is the only interaction kind currently produced by the
// public intake path.
const InteractionLike = "like"

// Interaction is a lightweight reaction on an announcement. There is no
// uniqueness constraint on (announcement_id, author_name): the same author
// may like the same announcement more than once and every row counts.
type Interaction struct {
	bun.BaseModel `bun:"table:interactions"`

	ID             string    `bun:"id,pk" json:"id"`
	AnnouncementID string    `bun:"announcement_id" json:"announcement_id"`
	AuthorName     string    `bun:"author_name" json:"author_name"`
	Kind           string    `bun:"kind" json:"kind"`
	CreatedAt      time.Time `bun:"created_at" json:"created_at"`
}

// CommentLike exists purely for counting. A comment's like count is always
// the number of rows referencing it, never a cached counter.
type CommentLike struct {
	bun.BaseModel `bun:"table:comment_likes"`

	ID         string    `bun:"id,pk" json:"id"`
	CommentID  string    `bun:"comment_id" json:"comment_id"`
	AuthorName string    `bun:"author_name" json:"author_name"`
	CreatedAt  time.Time `bun:"created_at" json:"created_at"`
}
