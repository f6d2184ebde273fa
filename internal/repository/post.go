package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow is a posts row joined with its author and engagement counts.
type postRow struct {
	ID              uuid.UUID      `db:"id"`
	Title           string         `db:"title"`
	Snippet         string         `db:"snippet"`
	Body            string         `db:"body"`
	Tags            pq.StringArray `db:"tags"`
	AuthorID        uuid.UUID      `db:"author_id"`
	Shares          int            `db:"shares"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	AuthorFirstName string         `db:"author_first_name"`
	AuthorLastName  string         `db:"author_last_name"`
	LikesCount      int            `db:"likes_count"`
	CommentsCount   int            `db:"comments_count"`
}

func (r postRow) toModel() model.Post {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return model.Post{
		ID:        r.ID,
		Title:     r.Title,
		Snippet:   r.Snippet,
		Body:      r.Body,
		Tags:      tags,
		AuthorID:  r.AuthorID,
		Shares:    r.Shares,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Author: &model.UserSummary{
			ID:        r.AuthorID,
			FirstName: r.AuthorFirstName,
			LastName:  r.AuthorLastName,
		},
		LikesCount:    r.LikesCount,
		CommentsCount: r.CommentsCount,
	}
}

func rowsToModels(rows []postRow) []model.Post {
	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toModel()
	}
	return posts
}

const postSelect = `
	SELECT p.id, p.title, p.snippet, p.body, p.tags, p.author_id, p.shares, p.created_at, p.updated_at,
	       u.first_name AS author_first_name, u.last_name AS author_last_name,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS likes_count,
	       (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS comments_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

// searchClause builds the listing filter. The query is regex-quoted so that
// input such as "c++" is matched literally by the case-insensitive ~* operator,
// and compared lower-cased against the normalized tag array.
func searchClause(filter PostFilter) (string, []interface{}) {
	q := strings.TrimSpace(filter.Query)
	if q == "" {
		return "", nil
	}
	clause := `WHERE (p.title ~* $1 OR p.snippet ~* $1 OR p.body ~* $1 OR $2 = ANY(p.tags))`
	return clause, []interface{}{regexp.QuoteMeta(q), strings.ToLower(q)}
}

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, title, snippet, body, tags, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING shares, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.ID,
		post.Title,
		post.Snippet,
		post.Body,
		pq.Array(post.Tags),
		post.AuthorID,
	).Scan(&post.Shares, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post with its author and like set.
func (r *postRepository) GetByID(ctx context.Context, postID uuid.UUID) (*model.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, postSelect+` WHERE p.id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	var likes []uuid.UUID
	err = r.db.SelectContext(ctx, &likes,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("get post likes: %w", err)
	}

	post := row.toModel()
	post.Likes = likes
	return &post, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// Count returns the number of posts matching filter.
func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int, error) {
	where, args := searchClause(filter)
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts p `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

// List returns one page of posts matching filter, newest first.
func (r *postRepository) List(ctx context.Context, filter PostFilter, offset, limit int) ([]model.Post, error) {
	where, args := searchClause(filter)
	n := len(args)
	query := fmt.Sprintf(`%s %s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`,
		postSelect, where, n+1, n+2)
	args = append(args, limit, offset)

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return rowsToModels(rows), nil
}

// FindSimilar returns posts sharing at least one tag. No ordering is applied
// beyond what the store returns.
func (r *postRepository) FindSimilar(ctx context.Context, tags []string, excludeID uuid.UUID, limit int) ([]model.Post, error) {
	if len(tags) == 0 {
		return []model.Post{}, nil
	}

	query := postSelect + ` WHERE p.tags && $1 AND p.id <> $2 LIMIT $3`
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(tags), excludeID, limit); err != nil {
		return nil, fmt.Errorf("find similar posts: %w", err)
	}
	return rowsToModels(rows), nil
}

// ListByAuthor returns every post written by authorID, newest first.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	query := postSelect + ` WHERE p.author_id = $1 ORDER BY p.created_at DESC, p.id DESC`
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, authorID); err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return rowsToModels(rows), nil
}

// ToggleLike flips userID's like on postID. The post row is locked for the
// duration of the transaction so toggles on one post are serialized, and the
// (post_id, user_id) primary key keeps each user in the set at most once.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (*model.LikeResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock post: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}

	liked := false
	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, userID)
		if err != nil {
			return nil, fmt.Errorf("insert like: %w", err)
		}
		liked = true
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.LikeResult{Liked: liked, LikesCount: count}, nil
}

// IncrementShares atomically bumps the share counter and returns the new value.
func (r *postRepository) IncrementShares(ctx context.Context, postID uuid.UUID) (int, error) {
	var shares int
	err := r.db.GetContext(ctx, &shares,
		`UPDATE posts SET shares = shares + 1, updated_at = NOW() WHERE id = $1 RETURNING shares`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment shares: %w", err)
	}
	return shares, nil
}

// Delete removes a post owned by userID. Likes and comments cascade.
func (r *postRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Check if post exists but belongs to different user
		exists, err := r.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}

	return nil
}
