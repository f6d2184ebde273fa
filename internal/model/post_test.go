package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"trim and lower", " Go , RUST", []string{"go", "rust"}},
		{"drops empties", "go,, ,rust,", []string{"go", "rust"}},
		{"dedupes", "go,Go, GO ,rust", []string{"go", "rust"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.raw))
		})
	}
}

func TestPost_LikedBy(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	p := &Post{Likes: []uuid.UUID{alice}}

	assert.True(t, p.LikedBy(alice))
	assert.False(t, p.LikedBy(bob))
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("email", MsgEmailRequired)
	v.Add("email", MsgEmailInvalid)
	v.Add("password", MsgPasswordTooShort)

	err := v.OrNil()
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, MsgEmailRequired, ve.Fields["email"])
	assert.Equal(t, "validation failed: email: Please enter email; password: Password must be at least 8 characters", err.Error())
}
