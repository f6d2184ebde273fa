package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/oyishomapeter-tech/blog-app/internal/cache"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
	"github.com/oyishomapeter-tech/blog-app/internal/repository"
)

// UserService is the credential store: account creation, password checks and
// cached user lookup for session resolution.
type UserService struct {
	repo  repository.UserRepository
	cache cache.UserCache
}

func NewUserService(repo repository.UserRepository, userCache cache.UserCache) *UserService {
	if userCache == nil {
		userCache = cache.NopUserCache{}
	}
	return &UserService{
		repo:  repo,
		cache: userCache,
	}
}

// validateSignup normalizes req in place and collects every field error.
func validateSignup(req *model.SignupRequest) error {
	req.FirstName = strings.ToLower(strings.TrimSpace(req.FirstName))
	req.LastName = strings.ToLower(strings.TrimSpace(req.LastName))
	req.Email = model.NormalizeEmail(req.Email)

	verr := model.NewValidationError()
	if req.FirstName == "" {
		verr.Add("firstname", model.MsgFirstNameRequired)
	}
	if req.LastName == "" {
		verr.Add("lastname", model.MsgLastNameRequired)
	}
	if req.Email == "" {
		verr.Add("email", model.MsgEmailRequired)
	} else if !isEmail(req.Email) {
		verr.Add("email", model.MsgEmailInvalid)
	}
	if req.Password == "" {
		verr.Add("password", model.MsgPasswordRequired)
	} else if len(req.Password) < model.MinPasswordLength {
		verr.Add("password", model.MsgPasswordTooShort)
	}
	return verr.OrNil()
}

// isEmail accepts a bare address only, rejecting display-name forms such as
// "Ada <ada@example.com>".
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// Create validates and stores a new account. The plaintext password is only
// used to derive the bcrypt hash.
func (s *UserService) Create(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if err := validateSignup(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), model.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return user, nil
}

// Login checks credentials. Unknown email and wrong password are reported as
// distinct errors; callers decide how much of that to reveal.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" {
		return nil, model.ErrIncorrectEmail
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrIncorrectEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrIncorrectPassword
	}
	return user, nil
}

// GetByID resolves a user through the cache, falling back to the repository.
// Cache failures are logged and never fail the lookup.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	logger := log.Ctx(ctx).With().Str("component", "user_service").Str("user_id", id.String()).Logger()

	user, err := s.cache.Get(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("user cache read failed")
	}

	user, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		logger.Warn().Err(err).Msg("user cache write failed")
	}
	return user, nil
}
