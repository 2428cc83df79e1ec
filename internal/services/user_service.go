package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/markdave123-py/Docsense/internal/auth"
	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/models"
)

const minPasswordLen = 8

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSignup      = errors.New("invalid signup")
	ErrUnverifiedEmail    = errors.New("google email is not verified")
)

type UserService struct {
	db core.DbClient
}

func NewUserService(db core.DbClient) *UserService {
	return &UserService{db: db}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates a local account. Validation failures wrap ErrInvalidSignup.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = normalizeUsername(username)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", ErrInvalidSignup)
	case len(password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignup, minPasswordLen)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: email is not valid", ErrInvalidSignup)
		}
	}

	if existing, err := s.db.GetUserByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	} else if existing != nil {
		return nil, ErrUserExists
	}
	if existing, err := s.db.GetUserByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	} else if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Provider:     models.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// A concurrent signup can still win the insert after the lookups above.
	if err := s.db.CreateUser(ctx, user); errors.Is(err, core.ErrDuplicate) {
		return nil, ErrUserExists
	} else if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.db.GetUserByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertGoogleUser returns the account owning the Google email, creating one
// on first login. The username is the email's local part, suffixed when taken.
// Unverified emails are refused with ErrUnverifiedEmail so they can never
// claim an existing account.
func (s *UserService) UpsertGoogleUser(ctx context.Context, gu *auth.OAuthUser) (*models.User, error) {
	if gu == nil || gu.Email == "" {
		return nil, errors.New("google user has no email")
	}
	if !gu.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}
	email := strings.ToLower(gu.Email)

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if user != nil {
		return user, nil
	}

	username, err := s.freeUsername(ctx, normalizeUsername(strings.SplitN(email, "@", 2)[0]))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user = &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Provider:  models.ProviderGoogle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}
	slog.Info("google user created", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *UserService) freeUsername(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 2; i < 100; i++ {
		existing, err := s.db.GetUserByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("lookup username: %w", err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// Documents lists the archive rows recorded for userID, newest first.
func (s *UserService) Documents(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}
