package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
)

const (
	MsgInvalidCredentials = ".Invalid credentials"
	MsgSomethingWentWrong = ".Something went wrong"
)

type Service struct {
	repo     Repository
	provider auth.Provider
	logger   zerolog.Logger
}

// NewService checks credentials against the users table with bcrypt.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	s := &Service{repo: repo, logger: logger.With().Str("domain", "account").Logger()}
	s.provider = auth.NewCredentialsProvider(s)
	return s
}

// UserByEmail satisfies auth.UserLookup.
func (s *Service) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	u, err := s.repo.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, db.FetchFailed(s.logger, "user", err)
	}
	return u, nil
}

// Authenticate signs a user in. A failed sign-in is reported as a message
// for the login form; only errors that are not sign-in failures are
// returned as errors.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*auth.Session, string, error) {
	sess, err := s.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err == nil {
		return sess, "", nil
	}

	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return nil, "", err
	}
	if authErr.Kind == auth.KindCredentialsSignin {
		return nil, MsgInvalidCredentials, nil
	}
	s.logger.Error().Err(err).Str("kind", string(authErr.Kind)).Msg("sign-in failed")
	return nil, MsgSomethingWentWrong, nil
}

// CreateUser hashes password and stores a new account.
func (s *Service) CreateUser(ctx context.Context, name, email, password string, role auth.Role) (*auth.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, errors.New("name and email are required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &auth.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
