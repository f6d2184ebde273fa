// Package memory is an in-process implementation of the repository
// interfaces, used by DB_DRIVER=memory and by service tests.
package memory

import (
	"sync"
	"time"

	"codeberg.org/gruf/go-mutexes"
	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
)

type postRecord struct {
	post  model.Post
	likes []uuid.UUID
	seq   uint64
}

type commentRecord struct {
	comment model.Comment
	seq     uint64
}

// Store holds users, posts and comments in maps guarded by mu. Mutations of a
// single post additionally hold that post's entry in locks so read-modify-write
// sequences never interleave.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]model.User
	emails   map[string]uuid.UUID
	posts    map[uuid.UUID]*postRecord
	comments map[uuid.UUID][]commentRecord
	seq      uint64

	locks *mutexes.MutexMap
	now   func() time.Time
}

func NewStore() *Store {
	locks := mutexes.MutexMap{}
	return &Store{
		users:    make(map[uuid.UUID]model.User),
		emails:   make(map[string]uuid.UUID),
		posts:    make(map[uuid.UUID]*postRecord),
		comments: make(map[uuid.UUID][]commentRecord),
		locks:    &locks,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for created_at stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

func (s *Store) Posts() repository.PostRepository {
	return &postRepository{s: s}
}

func (s *Store) Comments() repository.CommentRepository {
	return &commentRepository{s: s}
}

// nextSeq must be called with mu held for writing.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// authorOf must be called with mu held.
func (s *Store) authorOf(id uuid.UUID) *model.UserSummary {
	u, ok := s.users[id]
	if !ok {
		return &model.UserSummary{ID: id}
	}
	return u.Summary()
}

func lockKey(id uuid.UUID) string {
	return "post:" + id.String()
}
