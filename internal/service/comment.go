package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

// AddComment attaches a comment by author to postID and returns it with the
// post's new comment count.
func (s *PostService) AddComment(ctx context.Context, postID uuid.UUID, author *model.User, body string) (*model.CommentResult, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, model.ErrCommentBodyRequired
	}

	comment := &model.Comment{
		ID:     uuid.New(),
		PostID: postID,
		UserID: author.ID,
		Body:   body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = author.Summary()

	count, err := s.commentRepo.CountByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.CommentResult{Comment: comment, CommentsCount: count}, nil
}
