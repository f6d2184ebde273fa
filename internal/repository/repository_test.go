package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var postColumns = []string{
	"id", "title", "snippet", "body", "tags", "author_id", "shares", "created_at", "updated_at",
	"author_first_name", "author_last_name", "likes_count", "comments_count",
}

func addPostRow(rows *sqlmock.Rows, id, authorID uuid.UUID, title, tags string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), title, "snippet", "body", tags, authorID.String(), 0, createdAt, createdAt,
		"ada", "lovelace", 2, 1,
	)
}
