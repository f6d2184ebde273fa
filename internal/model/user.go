package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that can author posts, like and comment.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"firstname"`
	LastName     string    `db:"last_name" json:"lastname"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // never leaves the process
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FullName is used by the templates.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Summary returns the public projection used for joined author fields.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// UserSummary is the author reference resolved into posts and comments.
type UserSummary struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"firstname"`
	LastName  string    `db:"last_name" json:"lastname"`
}

func (u *UserSummary) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SignupRequest carries the signup form (JSON or urlencoded).
type SignupRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest carries the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login on success.
type AuthResponse struct {
	User uuid.UUID `json:"user"`
}

// AuthErrorResponse is returned by signup and login on failure.
type AuthErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

const (
	MinPasswordLength = 8
	PasswordHashCost  = 10
)

// Field-level messages shown on the signup and login forms.
const (
	MsgFirstNameRequired = "Please enter your first name"
	MsgLastNameRequired  = "Please enter your last name"
	MsgEmailRequired     = "Please enter email"
	MsgEmailInvalid      = "Please enter a valid email"
	MsgPasswordRequired  = "Please enter a password"
	MsgPasswordTooShort  = "Password must be at least 8 characters"
	MsgEmailInUse        = "This email is already in use"
	MsgLoginFailed       = "Incorrect email or password"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned on a unique-constraint violation for email
	ErrEmailExists = errors.New("email already exists")

	// ErrIncorrectEmail and ErrIncorrectPassword are kept apart internally;
	// the HTTP layer decides how much of the difference to show.
	ErrIncorrectEmail    = errors.New("incorrect email")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
