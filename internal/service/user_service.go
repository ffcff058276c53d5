package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/service/auth"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// RegisterUserInput carries the fields of a new account.
type RegisterUserInput struct {
	UserName  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService registers accounts and exchanges credentials for access tokens.
type UserService interface {
	// Register creates an account. Duplicate user names or emails return
	// ErrUserNameTaken or ErrEmailTaken.
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)

	// Login verifies the password and returns a signed access token.
	// Unknown users and wrong passwords both return auth.ErrInvalidCredentials.
	Login(ctx context.Context, userName, password string) (string, error)

	// GetUser returns the account for userName or ErrUserNotFound.
	GetUser(ctx context.Context, userName string) (*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	tx       store.Transactor
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	tokens   auth.JWTService
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	tx store.Transactor,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	tokens auth.JWTService,
	log *slog.Logger,
) (UserService, error) {
	if users == nil || tx == nil || hasher == nil || verifier == nil || tokens == nil {
		return nil, errors.New("user service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &userServiceImpl{
		users:    users,
		tx:       tx,
		hasher:   hasher,
		verifier: verifier,
		tokens:   tokens,
		logger:   log.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(input.UserName, input.FirstName, input.LastName, input.Email, input.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNameExists):
			log.Debug("attempted to register existing user name", slog.String("user_name", user.UserName))
			return nil, NewServiceError("user", "register", ErrUserNameTaken)
		case errors.Is(err, store.ErrEmailExists):
			log.Debug("attempted to register existing email", slog.String("user_name", user.UserName))
			return nil, NewServiceError("user", "register", ErrEmailTaken)
		}
		log.Error("failed to save user", slog.String("error", err.Error()), slog.String("user_name", user.UserName))
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_name", user.UserName))
	return user, nil
}

func (s *userServiceImpl) Login(ctx context.Context, userName, password string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown user", slog.String("user_name", userName))
			return "", auth.ErrInvalidCredentials
		}
		return "", NewServiceError("user", "login", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_name", userName))
		return "", auth.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user.UserName)
	if err != nil {
		return "", NewServiceError("user", "login", fmt.Errorf("failed to generate token: %w", err))
	}
	return token, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userName string) (*domain.User, error) {
	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("user", "get", ErrUserNotFound)
		}
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}
