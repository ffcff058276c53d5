package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/mocks"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/service"
	"github.com/phrazzld/benjamin-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (service.UserService, *mocks.MockUserStore, *mocks.MockPasswordVerifier, *mocks.MockJWTService) {
	t.Helper()
	users := mocks.NewMockUserStore()
	passwords := &mocks.MockPasswordVerifier{ShouldSucceed: true}
	tokens := &mocks.MockJWTService{Token: "signed-token"}
	log, _ := logger.NewTestLogger(t)

	svc, err := service.NewUserService(users, &mocks.MockTransactor{}, passwords, passwords, tokens, log)
	require.NoError(t, err)
	return svc, users, passwords, tokens
}

func validRegistration() service.RegisterUserInput {
	return service.RegisterUserInput{
		UserName:  "a.elmurzaev95",
		FirstName: "Adam",
		LastName:  "Elmurzaev",
		Email:     "adam@example.com",
		Password:  "password123",
	}
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	svc, users, passwords, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "hashed:password123", user.HashedPassword)
	assert.Empty(t, user.Password, "plaintext is dropped after hashing")
	assert.Equal(t, 1, passwords.HashCallCount)

	stored, err := users.GetByUserName(ctx, "a.elmurzaev95")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	_, err = svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, service.ErrUserNameTaken)

	other := validRegistration()
	other.UserName = "someone.else"
	_, err = svc.Register(ctx, other)
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*service.RegisterUserInput)
		wantErr error
	}{
		{name: "empty user name", mutate: func(in *service.RegisterUserInput) { in.UserName = "" }, wantErr: domain.ErrEmptyUserName},
		{name: "bad user name", mutate: func(in *service.RegisterUserInput) { in.UserName = "a b" }, wantErr: domain.ErrInvalidUserName},
		{name: "bad email", mutate: func(in *service.RegisterUserInput) { in.Email = "nope" }, wantErr: domain.ErrInvalidEmail},
		{name: "short password", mutate: func(in *service.RegisterUserInput) { in.Password = "short" }, wantErr: domain.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _, passwords, _ := newUserService(t)
			in := validRegistration()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, passwords.HashCallCount)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	svc, _, passwords, tokens := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	var issuedFor string
	tokens.GenerateTokenFn = func(_ context.Context, userName string) (string, error) {
		issuedFor = userName
		return "signed-token", nil
	}

	token, err := svc.Login(ctx, "a.elmurzaev95", "password123")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, "a.elmurzaev95", issuedFor)
	assert.Equal(t, "hashed:password123", passwords.CompareCalledWith.HashedPassword)

	_, err = svc.Login(ctx, "ghost", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	passwords.ShouldSucceed = false
	_, err = svc.Login(ctx, "a.elmurzaev95", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	passwords.ShouldSucceed = true
	tokens.GenerateTokenFn = func(context.Context, string) (string, error) { return "", errors.New("signing failed") }
	_, err = svc.Login(ctx, "a.elmurzaev95", "password123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, err := svc.GetUser(ctx, "a.elmurzaev95")
	require.NoError(t, err)
	assert.Equal(t, "adam@example.com", user.Email)

	_, err = svc.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestNewUserService_Validation(t *testing.T) {
	t.Parallel()

	_, err := service.NewUserService(nil, &mocks.MockTransactor{}, nil, nil, nil, nil)
	assert.Error(t, err)
}
