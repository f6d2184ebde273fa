package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment is a comment on a post. Posts list them newest first.
type Comment struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	PostID    uuid.UUID    `db:"post_id" json:"post_id"`
	UserID    uuid.UUID    `db:"user_id" json:"-"`
	Body      string       `db:"body" json:"body"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// CommentResult is returned after a comment is added.
type CommentResult struct {
	Comment       *Comment `json:"comment"`
	CommentsCount int      `json:"commentsCount"`
}

// Comment errors
var (
	ErrCommentBodyRequired = errors.New("comment body required")
)
