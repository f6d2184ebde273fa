package memory

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
)

type postRepository struct {
	s *Store
}

// matcher mirrors the Postgres search: a literal case-insensitive substring
// match on title, snippet and body, or an exact tag match.
type matcher struct {
	re  *regexp.Regexp
	tag string
}

func newMatcher(filter repository.PostFilter) *matcher {
	q := strings.TrimSpace(filter.Query)
	if q == "" {
		return nil
	}
	return &matcher{
		re:  regexp.MustCompile(`(?i)` + regexp.QuoteMeta(q)),
		tag: strings.ToLower(q),
	}
}

func (m *matcher) match(p *model.Post) bool {
	if m == nil {
		return true
	}
	if m.re.MatchString(p.Title) || m.re.MatchString(p.Snippet) || m.re.MatchString(p.Body) {
		return true
	}
	for _, t := range p.Tags {
		if t == m.tag {
			return true
		}
	}
	return false
}

// view materializes a record the way the SQL repository returns rows. Must be
// called with mu held.
func (r *postRepository) view(rec *postRecord, withLikes bool) model.Post {
	p := rec.post
	p.Tags = append([]string{}, rec.post.Tags...)
	p.Author = r.s.authorOf(p.AuthorID)
	p.LikesCount = len(rec.likes)
	p.CommentsCount = len(r.s.comments[p.ID])
	if withLikes {
		p.Likes = append([]uuid.UUID{}, rec.likes...)
	}
	return p
}

// newestFirst returns records ordered by created_at then insertion, newest
// first. Must be called with mu held.
func (r *postRepository) newestFirst() []*postRecord {
	recs := r.insertionOrder()
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	return recs
}

func (r *postRepository) insertionOrder() []*postRecord {
	recs := make([]*postRecord, 0, len(r.s.posts))
	for _, rec := range r.s.posts {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	return recs
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	post.Shares = 0
	post.CreatedAt = now
	post.UpdatedAt = now

	stored := *post
	stored.Tags = append([]string{}, post.Tags...)
	stored.Author = nil
	stored.Likes = nil
	stored.Comments = nil
	r.s.posts[post.ID] = &postRecord{post: stored, seq: r.s.nextSeq()}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	p := r.view(rec, true)
	return &p, nil
}

func (r *postRepository) Exists(ctx context.Context, postID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.posts[postID]
	return ok, nil
}

func (r *postRepository) Count(ctx context.Context, filter repository.PostFilter) (int, error) {
	m := newMatcher(filter)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := 0
	for _, rec := range r.s.posts {
		if m.match(&rec.post) {
			total++
		}
	}
	return total, nil
}

func (r *postRepository) List(ctx context.Context, filter repository.PostFilter, offset, limit int) ([]model.Post, error) {
	m := newMatcher(filter)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := []model.Post{}
	skipped := 0
	for _, rec := range r.newestFirst() {
		if len(posts) >= limit {
			break
		}
		if !m.match(&rec.post) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		posts = append(posts, r.view(rec, false))
	}
	return posts, nil
}

func (r *postRepository) FindSimilar(ctx context.Context, tags []string, excludeID uuid.UUID, limit int) ([]model.Post, error) {
	posts := []model.Post{}
	if len(tags) == 0 {
		return posts, nil
	}
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.insertionOrder() {
		if len(posts) >= limit {
			break
		}
		if rec.post.ID == excludeID {
			continue
		}
		for _, t := range rec.post.Tags {
			if _, ok := want[t]; ok {
				posts = append(posts, r.view(rec, false))
				break
			}
		}
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := []model.Post{}
	for _, rec := range r.newestFirst() {
		if rec.post.AuthorID == authorID {
			posts = append(posts, r.view(rec, false))
		}
	}
	return posts, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*model.LikeResult, error) {
	unlock := r.s.locks.Lock(lockKey(postID))
	defer unlock()

	r.s.mu.RLock()
	rec, ok := r.s.posts[postID]
	var likes []uuid.UUID
	if ok {
		likes = append([]uuid.UUID{}, rec.likes...)
	}
	r.s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPostNotFound
	}

	liked := true
	for i, id := range likes {
		if id == userID {
			likes = append(likes[:i], likes[i+1:]...)
			liked = false
			break
		}
	}
	if liked {
		likes = append(likes, userID)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Delete may have removed the post between the two critical sections.
	if _, ok := r.s.posts[postID]; !ok {
		return nil, model.ErrPostNotFound
	}
	rec.likes = likes
	return &model.LikeResult{Liked: liked, LikesCount: len(likes)}, nil
}

func (r *postRepository) IncrementShares(ctx context.Context, postID uuid.UUID) (int, error) {
	unlock := r.s.locks.Lock(lockKey(postID))
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.posts[postID]
	if !ok {
		return 0, model.ErrPostNotFound
	}
	rec.post.Shares++
	rec.post.UpdatedAt = r.s.now()
	return rec.post.Shares, nil
}

func (r *postRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	unlock := r.s.locks.Lock(lockKey(postID))
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	if rec.post.AuthorID != userID {
		return model.ErrNotPostOwner
	}
	delete(r.s.posts, postID)
	delete(r.s.comments, postID)
	return nil
}
