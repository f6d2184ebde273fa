package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.emails[u.Email]; ok {
		return model.ErrEmailExists
	}
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := r.s.users[id]
	return &u, nil
}
