package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service checks admin credentials and manages sessions.
type Service struct {
	creds    Credentials
	sessions *SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. secret signs bearer tokens.
func NewService(creds Credentials, sessions *SessionStore, secret string, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		creds:    creds,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Login verifies email and password and opens a session.
func (s *Service) Login(ctx context.Context, email, password, ip, userAgent string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.creds.Email == "" || s.creds.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if email != strings.ToLower(s.creds.Email) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.sessions.Save(ctx, sess, s.ttl); err != nil {
		return LoginResult{}, err
	}
	token, err := signToken(sess, s.secret)
	if err != nil {
		return LoginResult{}, err
	}
	s.logger.Info("admin login", slog.String("session_id", sess.ID), slog.String("ip", ip))
	return LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, Email: email}, nil
}

// Authenticate resolves a bearer token to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	claims, err := verifyToken(token, s.secret, s.now())
	if err != nil {
		return Session{}, err
	}
	return s.sessions.Get(ctx, claims.SessionID)
}

// Logout ends the token's session. Tokens whose session is already gone
// log out successfully.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := verifyToken(token, s.secret, s.now())
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return err
	}
	s.logger.Info("admin logout", slog.String("session_id", claims.SessionID))
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
