package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/planner/internal/backend"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const minPasswordLen = 8

// User is the identity attached to a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what the identity provider hands to a signed-in client.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Expired reports whether the session can no longer be used at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// Service issues sessions for accounts stored in the backend.
type Service struct {
	db     *backend.Backend
	issuer *Issuer
}

func NewService(db *backend.Backend, issuer *Issuer) *Service {
	return &Service{db: db, issuer: issuer}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func (s *Service) SignUp(email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidCredentials)
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.db.CreateUser(email, hash)
	if errors.Is(err, backend.ErrConflict) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *Service) SignIn(email, password string) (*Session, error) {
	u, err := s.db.UserByEmail(strings.TrimSpace(email))
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// SignOut revokes the token so it stops authorizing requests.
func (s *Service) SignOut(token string) error {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return err
	}
	return s.db.RevokeToken(claims.ID, claims.ExpiresAt.Time)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *Service) Authenticate(token string) (*User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.db.IsRevoked(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: signed out", ErrInvalidToken)
	}
	return &User{ID: claims.Subject, Email: claims.Email}, nil
}

func (s *Service) session(u *backend.UserRow) (*Session, error) {
	token, exp, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   exp,
		User:        User{ID: u.ID, Email: u.Email},
	}, nil
}
