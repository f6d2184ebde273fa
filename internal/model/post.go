package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post is a blog post with its engagement data.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	AuthorID  uuid.UUID `json:"-"`
	Shares    int       `json:"shares"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields
	Author        *UserSummary `json:"author,omitempty"`
	Likes         []uuid.UUID  `json:"likes,omitempty"`
	LikesCount    int          `json:"likes_count"`
	Comments      []Comment    `json:"comments,omitempty"`
	CommentsCount int          `json:"comments_count"`
}

// LikedBy reports whether userID is in the loaded like set.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest is the new-post form. Tags is the raw comma-separated input.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
	Tags    string `json:"tags"`
}

// LikeResult is returned by a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ShareResult is returned by a share increment.
type ShareResult struct {
	Shares int `json:"shares"`
}

// ListQuery is the listing input after query-string parsing.
type ListQuery struct {
	Page  int
	Query string
}

// Listing is the paginated, searchable blog index.
type Listing struct {
	Blogs       []Post
	Trending    []Post
	CurrentPage int
	TotalPages  int
	Query       string

	// Degraded is set when the store failed and an empty listing was substituted.
	Degraded bool
}

const (
	PageSize      = 4
	TrendingLimit = 5
	SimilarLimit  = 5
)

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not the owner of this post")
)

// NormalizeTags splits a comma-separated tag list, trims and lower-cases each
// tag, and drops empties and duplicates while keeping first-seen order.
func NormalizeTags(raw string) []string {
	return NormalizeTagList(strings.Split(raw, ","))
}

// NormalizeTagList applies the tag normalization to an already split list.
func NormalizeTagList(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
