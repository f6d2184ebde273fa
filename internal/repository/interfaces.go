package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

type UserRepository interface {
	// Create inserts u. A duplicate email yields model.ErrEmailExists.
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail expects an already normalized address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostFilter narrows listing and counting. An empty Query matches every post.
type PostFilter struct {
	Query string
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID returns the post with author and like set resolved.
	GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error)
	Exists(ctx context.Context, postID uuid.UUID) (bool, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
	// List returns posts newest first with author resolved.
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]model.Post, error)
	// FindSimilar returns up to limit posts sharing a tag with tags, excluding
	// excludeID, in store order.
	FindSimilar(ctx context.Context, tags []string, excludeID uuid.UUID, limit int) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error)
	// ToggleLike adds userID to the like set when absent and removes it when
	// present, atomically per post.
	ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*model.LikeResult, error)
	IncrementShares(ctx context.Context, postID uuid.UUID) (int, error)
	// Delete removes the post when userID is its author.
	Delete(ctx context.Context, postID, userID uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	// GetByPostID returns comments newest first with authors resolved.
	GetByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	CountByPostID(ctx context.Context, postID uuid.UUID) (int, error)
}
