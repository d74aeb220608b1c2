package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lsk/studytrackr/internal/store"
)

const (
	passwordMin       = 8
	passwordMax       = 20
	tokenValidityDays = 30
)

var (
	// ErrInvalidCredentials is deliberately the same for an unknown
	// username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordLength     = errors.New("password must be 8-20 characters")
)

// Service handles registration, login and the auto-login token.
type Service struct {
	store     *store.Store
	tokenPath string
}

// NewService creates an auth service writing the auto-login token to
// tokenPath.
func NewService(s *store.Store, tokenPath string) *Service {
	return &Service{store: s, tokenPath: tokenPath}
}

// Register creates a new user. The confirmation must match and the username
// must be free; nothing is written otherwise.
func (s *Service) Register(username, password, confirmPassword string) (*store.User, error) {
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(username, string(hash))
}

// Login verifies the credentials. With remember set, a fresh token with a
// 30-day expiry is stored on the user row and written to the side-channel
// file for later auto-login.
func (s *Service) Login(username, password string, remember bool) (*store.User, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if remember {
		token := uuid.NewString()
		expiresAt := time.Now().AddDate(0, 0, tokenValidityDays)
		if err := s.store.SetUserToken(user.ID, token, expiresAt); err != nil {
			return nil, err
		}
		if err := s.writeTokenFile(token); err != nil {
			return nil, err
		}
		user.AutoLoginToken = token
		user.TokenExpiresAt = &expiresAt
	}
	return user, nil
}

// AutoLogin resumes a session from the side-channel token file. A missing,
// unknown or expired token is cleared and yields nil, nil rather than an
// error.
func (s *Service) AutoLogin() (*store.User, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, nil
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		s.removeTokenFile()
		return nil, nil
	}

	user, err := s.store.GetUserByToken(token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.removeTokenFile()
		return nil, nil
	}
	if user.TokenExpiresAt == nil || time.Now().After(*user.TokenExpiresAt) {
		s.store.ClearUserToken(user.ID)
		s.removeTokenFile()
		return nil, nil
	}
	return user, nil
}

// Logout clears the stored token and removes the side-channel file.
func (s *Service) Logout(user *store.User) error {
	if err := s.store.ClearUserToken(user.ID); err != nil {
		return err
	}
	s.removeTokenFile()
	user.AutoLoginToken = ""
	user.TokenExpiresAt = nil
	return nil
}

func (s *Service) writeTokenFile(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.tokenPath), 0o755); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(s.tokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *Service) removeTokenFile() {
	os.Remove(s.tokenPath)
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < passwordMin || n > passwordMax {
		return ErrPasswordLength
	}
	return nil
}
