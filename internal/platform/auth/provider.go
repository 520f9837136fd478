package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinic/clinic/internal/platform/db"
)

// ErrorKind classifies a sign-in failure.
type ErrorKind string

const (
	// KindCredentialsSignin means the email or password was wrong.
	KindCredentialsSignin ErrorKind = "CredentialsSignin"
	// KindCallback means the provider itself failed.
	KindCallback ErrorKind = "CallbackRouteError"
)

// Error is returned by a Provider for every authentication failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Provider verifies credentials and returns the resulting session.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
}

// User is an account as stored, including its bcrypt hash.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// UserLookup finds an account by email, returning db.ErrNotFound when none
// exists.
type UserLookup interface {
	UserByEmail(ctx context.Context, email string) (*User, error)
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// CredentialsProvider checks an email and password against stored bcrypt
// hashes.
type CredentialsProvider struct {
	users    UserLookup
	validate *validator.Validate
}

func NewCredentialsProvider(users UserLookup) *CredentialsProvider {
	return &CredentialsProvider{users: users, validate: validator.New()}
}

func (p *CredentialsProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := p.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return nil, &Error{Kind: KindCredentialsSignin}
	}

	u, err := p.users.UserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, &Error{Kind: KindCredentialsSignin}
	}
	if err != nil {
		return nil, &Error{Kind: KindCallback, Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, &Error{Kind: KindCredentialsSignin}
	}

	return &Session{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

// HashPassword returns the bcrypt hash stored in users.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
