package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[c.PostID]; !ok {
		return model.ErrPostNotFound
	}
	c.CreatedAt = r.s.now()

	stored := *c
	stored.Author = nil
	r.s.comments[c.PostID] = append(r.s.comments[c.PostID], commentRecord{comment: stored, seq: r.s.nextSeq()})
	return nil
}

func (r *commentRepository) GetByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := append([]commentRecord{}, r.s.comments[postID]...)
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.comment.CreatedAt.Equal(b.comment.CreatedAt) {
			return a.comment.CreatedAt.After(b.comment.CreatedAt)
		}
		return a.seq > b.seq
	})

	comments := make([]model.Comment, len(recs))
	for i, rec := range recs {
		comments[i] = rec.comment
		comments[i].Author = r.s.authorOf(rec.comment.UserID)
	}
	return comments, nil
}

func (r *commentRepository) CountByPostID(ctx context.Context, postID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.comments[postID]), nil
}
