package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"archeohub-backend/internal/middleware"
	"archeohub-backend/internal/models"
	"archeohub-backend/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type sessionStore interface {
	Create(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// Session is a freshly issued login: the profile plus the signed cookie value.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users    userStore
	sessions sessionStore
	jwt      *middleware.JWTAuth
}

func NewAuthService(users userStore, sessions sessionStore, jwt *middleware.JWTAuth) *AuthService {
	return &AuthService{users: users, sessions: sessions, jwt: jwt}
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*Session, error) {
	email := repository.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, &ValidationError{Message: "Missing email or password"}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &ValidationError{Message: "Password must be >= 6 chars"}
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, &ConflictError{Message: "Email already registered"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         optional(strings.TrimSpace(req.Name)),
		ImageBase64:  optional(req.ImageBase64),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, &ConflictError{Message: "Email already registered"}
		}
		return nil, err
	}

	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	email := repository.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, &ValidationError{Message: "Missing email or password"}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid credentials"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid credentials"}
	}

	return s.issue(ctx, user)
}

// Me loads the profile behind an authenticated session.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, &UnauthorizedError{Message: "Not authenticated"}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Not authenticated"}
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	sid := uuid.NewString()
	token, expiresAt, err := s.jwt.GenerateSessionToken(user.ID, user.Email, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.sessions.Create(ctx, sid, user.ID, middleware.SessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
