package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
)

// steppedClock returns a time source that advances one second per call.
func steppedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) (*Store, *model.User) {
	t.Helper()
	s := NewStore()
	s.SetClock(steppedClock())

	author := &model.User{ID: uuid.New(), FirstName: "ada", LastName: "lovelace", Email: "ada@example.com"}
	require.NoError(t, s.Users().Create(context.Background(), author))
	return s, author
}

func addPost(t *testing.T, s *Store, author uuid.UUID, title string, tags ...string) *model.Post {
	t.Helper()
	p := &model.Post{ID: uuid.New(), Title: title, Snippet: "snippet", Body: "body", Tags: tags, AuthorID: author}
	require.NoError(t, s.Posts().Create(context.Background(), p))
	return p
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Users().Create(context.Background(), &model.User{ID: uuid.New(), Email: "ada@example.com"})
	assert.ErrorIs(t, err, model.ErrEmailExists)

	_, err = s.Users().GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestPosts_ListNewestFirst(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		ids = append(ids, addPost(t, s, author.ID, title).ID)
	}

	page, err := s.Posts().List(ctx, repository.PostFilter{}, 0, model.PageSize)
	require.NoError(t, err)
	require.Len(t, page, 4)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, "ada lovelace", page[0].Author.FullName())

	page, err = s.Posts().List(ctx, repository.PostFilter{}, 4, model.PageSize)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	total, err := s.Posts().Count(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestPosts_SearchIsLiteral(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()

	addPost(t, s, author.ID, "Learning C++ today")
	addPost(t, s, author.ID, "Learning C today")
	addPost(t, s, author.ID, "Tagged only", "golang")

	tests := []struct {
		query string
		want  int
	}{
		{"c++", 1},
		{"LEARNING", 2},
		{"GoLang", 1},
		{"gol", 0},
		{".*", 0},
		{"  ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			total, err := s.Posts().Count(ctx, repository.PostFilter{Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)

			posts, err := s.Posts().List(ctx, repository.PostFilter{Query: tt.query}, 0, 10)
			require.NoError(t, err)
			assert.Len(t, posts, tt.want)
		})
	}
}

func TestPosts_FindSimilar(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()

	self := addPost(t, s, author.ID, "self", "go", "web")
	a := addPost(t, s, author.ID, "a", "web")
	addPost(t, s, author.ID, "b", "rust")
	c := addPost(t, s, author.ID, "c", "go")

	posts, err := s.Posts().FindSimilar(ctx, self.Tags, self.ID, model.SimilarLimit)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, a.ID, posts[0].ID)
	assert.Equal(t, c.ID, posts[1].ID)

	posts, err = s.Posts().FindSimilar(ctx, nil, self.ID, model.SimilarLimit)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPosts_ToggleLike(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()
	p := addPost(t, s, author.ID, "post")
	liker := uuid.New()

	res, err := s.Posts().ToggleLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.Equal(t, &model.LikeResult{Liked: true, LikesCount: 1}, res)

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.LikedBy(liker))

	res, err = s.Posts().ToggleLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.Equal(t, &model.LikeResult{Liked: false, LikesCount: 0}, res)

	_, err = s.Posts().ToggleLike(ctx, uuid.New(), liker)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestPosts_ToggleLike_Concurrent(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()
	p := addPost(t, s, author.ID, "post")

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Posts().ToggleLike(ctx, p.ID, uuid.New())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, users, got.LikesCount)
	assert.Len(t, got.Likes, users)
}

func TestPosts_ToggleLike_ConcurrentSameUser(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()
	p := addPost(t, s, author.ID, "post")
	liker := uuid.New()

	const toggles = 31
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		liked int
	)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Posts().ToggleLike(ctx, p.ID, liker)
			if !assert.NoError(t, err) {
				return
			}
			assert.LessOrEqual(t, res.LikesCount, 1)
			if res.Liked {
				mu.Lock()
				liked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, toggles/2+1, liked, "toggles alternate between like and unlike")

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{liker}, got.Likes)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.LikedBy(liker))
}

func TestPosts_IncrementShares(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()
	p := addPost(t, s, author.ID, "post")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Posts().IncrementShares(ctx, p.ID)
		}()
	}
	wg.Wait()

	shares, err := s.Posts().IncrementShares(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, shares)
}

func TestPosts_Delete(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()
	p := addPost(t, s, author.ID, "post")
	require.NoError(t, s.Comments().Create(ctx, &model.Comment{ID: uuid.New(), PostID: p.ID, UserID: author.ID, Body: "hi"}))

	assert.ErrorIs(t, s.Posts().Delete(ctx, p.ID, uuid.New()), model.ErrNotPostOwner)
	require.NoError(t, s.Posts().Delete(ctx, p.ID, author.ID))
	assert.ErrorIs(t, s.Posts().Delete(ctx, p.ID, author.ID), model.ErrPostNotFound)

	n, err := s.Comments().CountByPostID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestComments_NewestFirst(t *testing.T) {
	s, author := newTestStore(t)
	ctx := context.Background()
	p := addPost(t, s, author.ID, "post")

	for _, body := range []string{"first", "second"} {
		require.NoError(t, s.Comments().Create(ctx, &model.Comment{ID: uuid.New(), PostID: p.ID, UserID: author.ID, Body: body}))
	}

	comments, err := s.Comments().GetByPostID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Body)
	assert.Equal(t, "ada", comments[0].Author.FirstName)

	err = s.Comments().Create(ctx, &model.Comment{ID: uuid.New(), PostID: uuid.New(), UserID: author.ID, Body: "x"})
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	post, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, post.CommentsCount)
}
