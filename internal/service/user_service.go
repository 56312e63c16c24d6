package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dom "taskdeck/internal/domain"
	"taskdeck/internal/repo"
	"taskdeck/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration and credential checks.
type UserService struct {
	repo        repo.UserRepo
	minPassword int
	maxPassword int
}

// NewUserService returns a new UserService with the given password bounds.
func NewUserService(repo repo.UserRepo, minPassword, maxPassword int) *UserService {
	return &UserService{repo: repo, minPassword: minPassword, maxPassword: maxPassword}
}

// Register creates a new user with a bcrypt-hashed password. The plaintext
// is never stored.
func (s *UserService) Register(ctx context.Context, username, email, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	if len(password) < s.minPassword || len(password) > s.maxPassword {
		return dom.User{}, fmt.Errorf("password must be between %d and %d characters: %w",
			s.minPassword, s.maxPassword, ErrPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err, "users_username_key") {
			return dom.User{}, ErrUsernameTaken
		}
		if utils.IsPGUniqueViolation(err, "users_email_key") {
			return dom.User{}, ErrEmailTaken
		}
		if utils.IsPGUniqueViolation(err, "") {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// ValidateCredentials checks username and password; returns the user if valid.
// Unknown username and wrong password produce the same error so callers
// cannot enumerate accounts.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}
