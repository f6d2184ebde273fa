package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
)

// PostService handles authoring and engagement: create, like, comment, share
// and delete.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// Create validates req and stores a new post by authorID.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, req model.CreatePostRequest) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	snippet := strings.TrimSpace(req.Snippet)
	body := strings.TrimSpace(req.Body)

	verr := model.NewValidationError()
	if title == "" {
		verr.Add("title", "Please enter a title")
	}
	if snippet == "" {
		verr.Add("snippet", "Please enter a snippet")
	}
	if body == "" {
		verr.Add("body", "Please enter the post body")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:       uuid.New(),
		Title:    title,
		Snippet:  snippet,
		Body:     body,
		Tags:     model.NormalizeTags(req.Tags),
		AuthorID: authorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("post_id", post.ID.String()).
		Str("author_id", authorID.String()).
		Strs("tags", post.Tags).
		Msg("post created")
	return post, nil
}

// Get returns a post with its like set and comments, newest comment first.
func (s *PostService) Get(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	post.CommentsCount = len(comments)
	return post, nil
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*model.LikeResult, error) {
	return s.postRepo.ToggleLike(ctx, postID, userID)
}

// Share bumps the share counter. Anonymous callers may share.
func (s *PostService) Share(ctx context.Context, postID uuid.UUID) (int, error) {
	return s.postRepo.IncrementShares(ctx, postID)
}

// Delete removes postID when userID wrote it.
func (s *PostService) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	if err := s.postRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("post_id", postID.String()).
		Str("user_id", userID.String()).
		Msg("post deleted")
	return nil
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	return s.postRepo.ListByAuthor(ctx, authorID)
}
