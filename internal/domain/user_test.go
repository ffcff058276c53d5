package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("a.elmurzaev95", "Adam", "Elmurzaev", "adam@example.com", "correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "a.elmurzaev95", user.UserName)
	assert.Equal(t, "correct-horse", user.Password)
	assert.Empty(t, user.HashedPassword)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := func() User {
		return User{
			ID:             uuid.New(),
			UserName:       "jane_doe-1",
			Email:          "jane@example.com",
			HashedPassword: "$2a$10$hash",
		}
	}

	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{name: "valid stored user", mutate: func(u *User) {}},
		{name: "nil id", mutate: func(u *User) { u.ID = uuid.Nil }, wantErr: ErrEmptyUserID},
		{name: "empty user name", mutate: func(u *User) { u.UserName = "" }, wantErr: ErrEmptyUserName},
		{name: "user name with spaces", mutate: func(u *User) { u.UserName = "jane doe" }, wantErr: ErrInvalidUserName},
		{name: "user name too long", mutate: func(u *User) { u.UserName = strings.Repeat("a", 65) }, wantErr: ErrInvalidUserName},
		{name: "empty email", mutate: func(u *User) { u.Email = "" }, wantErr: ErrEmptyEmail},
		{name: "malformed email", mutate: func(u *User) { u.Email = "jane.example.com" }, wantErr: ErrInvalidEmail},
		{name: "display-name email", mutate: func(u *User) { u.Email = "Jane <jane@example.com>" }, wantErr: ErrInvalidEmail},
		{name: "short password", mutate: func(u *User) { u.Password = "short" }, wantErr: ErrPasswordTooShort},
		{name: "long password", mutate: func(u *User) { u.Password = strings.Repeat("p", 73) }, wantErr: ErrPasswordTooLong},
		{name: "no password or hash", mutate: func(u *User) { u.HashedPassword = "" }, wantErr: ErrEmptyHashedPassword},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			u := valid()
			tc.mutate(&u)

			err := u.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.True(t, errors.Is(err, ErrValidation), "all user validation errors wrap ErrValidation")
		})
	}
}
